package emobj

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ProjectDB stores micrograph and CTF sets in a per-project SQLite
// database. This is also the on-disk format the "scipion" CTF importer
// reads.
type ProjectDB struct {
	conn *sql.DB
}

// OpenProjectDB opens (creating if necessary) a project database at path.
func OpenProjectDB(ctx context.Context, path string) (*ProjectDB, error) {

	conn, err := sql.Open("sqlite3", path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open project database '%s', %w", path, err)
	}

	db := &ProjectDB{
		conn: conn,
	}

	err = db.setupTables(ctx)

	if err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the underlying database handle.
func (db *ProjectDB) Close() error {
	return db.conn.Close()
}

func (db *ProjectDB) setupTables(ctx context.Context) error {

	schema := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			name TEXT PRIMARY KEY,
			value REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS micrographs (
			id INTEGER PRIMARY KEY,
			filename TEXT NOT NULL,
			mic_name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS ctfs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mic_id INTEGER NOT NULL REFERENCES micrographs(id),
			defocus_u REAL NOT NULL,
			defocus_v REAL NOT NULL,
			defocus_angle REAL NOT NULL,
			phase_shift REAL NOT NULL DEFAULT 0,
			fit_quality REAL NOT NULL DEFAULT 0,
			resolution REAL NOT NULL DEFAULT 0,
			psd_file TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, q := range schema {

		_, err := db.conn.ExecContext(ctx, q)

		if err != nil {
			return fmt.Errorf("Failed to create project tables, %w", err)
		}
	}

	return nil
}

// SaveMicrographs replaces the stored micrograph set (items and set-level
// metadata) with mics.
func (db *ProjectDB) SaveMicrographs(ctx context.Context, mics *SetOfMicrographs) error {

	tx, err := db.conn.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("Failed to begin transaction, %w", err)
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM micrographs`)

	if err != nil {
		return fmt.Errorf("Failed to clear micrographs table, %w", err)
	}

	props := map[string]float64{
		"sampling_rate":        mics.SamplingRate,
		"voltage":              mics.Acquisition.Voltage,
		"spherical_aberration": mics.Acquisition.SphericalAberration,
		"amplitude_contrast":   mics.Acquisition.AmplitudeContrast,
		"magnification":        mics.Acquisition.Magnification,
	}

	for name, value := range props {

		_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO properties (name, value) VALUES (?, ?)`, name, value)

		if err != nil {
			return fmt.Errorf("Failed to store property '%s', %w", name, err)
		}
	}

	for _, mic := range mics.Items() {

		_, err = tx.ExecContext(ctx, `INSERT INTO micrographs (id, filename, mic_name) VALUES (?, ?, ?)`, mic.ID, mic.FileName, mic.MicName)

		if err != nil {
			return fmt.Errorf("Failed to store micrograph %d, %w", mic.ID, err)
		}
	}

	err = tx.Commit()

	if err != nil {
		return fmt.Errorf("Failed to commit micrographs, %w", err)
	}

	return nil
}

// LoadMicrographs reads the stored micrograph set.
func (db *ProjectDB) LoadMicrographs(ctx context.Context) (*SetOfMicrographs, error) {

	mics := NewSetOfMicrographs()

	rows, err := db.conn.QueryContext(ctx, `SELECT name, value FROM properties`)

	if err != nil {
		return nil, fmt.Errorf("Failed to query properties, %w", err)
	}

	defer rows.Close()

	for rows.Next() {

		var name string
		var value float64

		err = rows.Scan(&name, &value)

		if err != nil {
			return nil, fmt.Errorf("Failed to scan property, %w", err)
		}

		switch name {
		case "sampling_rate":
			mics.SamplingRate = value
		case "voltage":
			mics.Acquisition.Voltage = value
		case "spherical_aberration":
			mics.Acquisition.SphericalAberration = value
		case "amplitude_contrast":
			mics.Acquisition.AmplitudeContrast = value
		case "magnification":
			mics.Acquisition.Magnification = value
		default:
			// pass
		}
	}

	err = rows.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to read properties, %w", err)
	}

	mic_rows, err := db.conn.QueryContext(ctx, `SELECT id, filename, mic_name FROM micrographs ORDER BY id`)

	if err != nil {
		return nil, fmt.Errorf("Failed to query micrographs, %w", err)
	}

	defer mic_rows.Close()

	for mic_rows.Next() {

		mic := new(Micrograph)

		err = mic_rows.Scan(&mic.ID, &mic.FileName, &mic.MicName)

		if err != nil {
			return nil, fmt.Errorf("Failed to scan micrograph, %w", err)
		}

		err = mics.Append(mic)

		if err != nil {
			return nil, err
		}
	}

	err = mic_rows.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to read micrographs, %w", err)
	}

	return mics, nil
}

// SaveCTFs replaces the stored CTF set with ctfs. Estimates without a
// micrograph are rejected.
func (db *ProjectDB) SaveCTFs(ctx context.Context, ctfs *SetOfCTFs) error {

	tx, err := db.conn.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("Failed to begin transaction, %w", err)
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM ctfs`)

	if err != nil {
		return fmt.Errorf("Failed to clear ctfs table, %w", err)
	}

	for _, ctf := range ctfs.Items() {

		if ctf.Micrograph == nil {
			return fmt.Errorf("CTF estimate is not associated with a micrograph")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO ctfs (mic_id, defocus_u, defocus_v, defocus_angle, phase_shift, fit_quality, resolution, psd_file)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ctf.Micrograph.ID, ctf.DefocusU, ctf.DefocusV, ctf.DefocusAngle,
			ctf.PhaseShift, ctf.FitQuality, ctf.Resolution, ctf.PsdFile)

		if err != nil {
			return fmt.Errorf("Failed to store CTF for micrograph %d, %w", ctf.Micrograph.ID, err)
		}
	}

	err = tx.Commit()

	if err != nil {
		return fmt.Errorf("Failed to commit CTFs, %w", err)
	}

	return nil
}

// LoadCTFs reads the stored CTF set, resolving each estimate's micrograph
// from the stored micrograph set.
func (db *ProjectDB) LoadCTFs(ctx context.Context) (*SetOfCTFs, error) {

	mics, err := db.LoadMicrographs(ctx)

	if err != nil {
		return nil, err
	}

	ctfs := NewSetOfCTFs()
	ctfs.SetMicrographs(mics)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT mic_id, defocus_u, defocus_v, defocus_angle, phase_shift, fit_quality, resolution, psd_file
		 FROM ctfs ORDER BY id`)

	if err != nil {
		return nil, fmt.Errorf("Failed to query CTFs, %w", err)
	}

	defer rows.Close()

	for rows.Next() {

		ctf := new(CTF)
		var mic_id int64

		err = rows.Scan(&mic_id, &ctf.DefocusU, &ctf.DefocusV, &ctf.DefocusAngle,
			&ctf.PhaseShift, &ctf.FitQuality, &ctf.Resolution, &ctf.PsdFile)

		if err != nil {
			return nil, fmt.Errorf("Failed to scan CTF, %w", err)
		}

		mic := mics.Get(mic_id)

		if mic == nil {
			return nil, fmt.Errorf("CTF references unknown micrograph %d", mic_id)
		}

		ctf.Micrograph = mic
		ctfs.Append(ctf)
	}

	err = rows.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to read CTFs, %w", err)
	}

	return ctfs, nil
}

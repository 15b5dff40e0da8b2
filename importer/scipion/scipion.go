// Package scipion imports CTF estimates from a project database written
// by this module (see emobj.ProjectDB). The database file is fetched from
// the source bucket and opened locally, since the sqlite driver needs a
// real file.
package scipion

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/importer"
	"gocloud.dev/blob"
)

func init() {

	err := importer.Register("scipion", func(ctx context.Context, bucket *blob.Bucket) (importer.Importer, error) {

		im := &Importer{
			bucket: bucket,
			sets:   make(map[string]map[int64]*emobj.CTF),
		}

		return im, nil
	})

	if err != nil {
		panic(err)
	}
}

type Importer struct {
	bucket *blob.Bucket
	// loaded databases, keyed by bucket key, then micrograph ID
	sets map[string]map[int64]*emobj.CTF
	mu   sync.Mutex
}

func (im *Importer) ImportCTF(ctx context.Context, mic *emobj.Micrograph, key string) (*emobj.CTF, error) {

	set, err := im.loadSet(ctx, key)

	if err != nil {
		return nil, err
	}

	ctf, ok := set[mic.ID]

	if !ok {
		return nil, fmt.Errorf("No CTF for micrograph %d in %s", mic.ID, key)
	}

	out := *ctf
	out.Micrograph = mic

	return &out, nil
}

// loadSet fetches and indexes a database once per bucket key.
func (im *Importer) loadSet(ctx context.Context, key string) (map[int64]*emobj.CTF, error) {

	im.mu.Lock()
	defer im.mu.Unlock()

	set, ok := im.sets[key]

	if ok {
		return set, nil
	}

	local_path, err := im.fetch(ctx, key)

	if err != nil {
		return nil, err
	}

	defer os.Remove(local_path)

	db, err := emobj.OpenProjectDB(ctx, local_path)

	if err != nil {
		return nil, err
	}

	defer db.Close()

	ctfs, err := db.LoadCTFs(ctx)

	if err != nil {
		return nil, err
	}

	set = make(map[int64]*emobj.CTF)

	for _, ctf := range ctfs.Items() {
		set[ctf.Micrograph.ID] = ctf
	}

	im.sets[key] = set
	return set, nil
}

func (im *Importer) fetch(ctx context.Context, key string) (string, error) {

	r, err := im.bucket.NewReader(ctx, key, nil)

	if err != nil {
		return "", fmt.Errorf("Failed to create reader for %s, %w", key, err)
	}

	defer r.Close()

	tmp, err := os.CreateTemp("", "ctfs-*.sqlite")

	if err != nil {
		return "", fmt.Errorf("Failed to create temporary database file, %w", err)
	}

	_, err = io.Copy(tmp, r)

	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("Failed to fetch %s, %w", key, err)
	}

	err = tmp.Close()

	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("Failed to close temporary database file, %w", err)
	}

	return tmp.Name(), nil
}

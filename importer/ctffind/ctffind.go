// Package ctffind imports CTF estimates written by CTFFIND, in both the
// CTFFIND4 columnar .txt output and the older CTFFIND3-style .log with a
// "Final Values" line.
package ctffind

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/importer"
	"gocloud.dev/blob"
)

func init() {

	err := importer.Register("ctffind", func(ctx context.Context, bucket *blob.Bucket) (importer.Importer, error) {
		return &Importer{bucket: bucket}, nil
	})

	if err != nil {
		panic(err)
	}
}

type Importer struct {
	bucket *blob.Bucket
}

func (im *Importer) ImportCTF(ctx context.Context, mic *emobj.Micrograph, key string) (*emobj.CTF, error) {

	body, err := importer.ReadAll(ctx, im.bucket, key)

	if err != nil {
		return nil, err
	}

	var ctf *emobj.CTF

	switch strings.ToLower(filepath.Ext(key)) {
	case ".txt":
		ctf, err = parseTxt(body)
	default:
		ctf, err = parseLog(body)
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to parse CTFFIND output %s, %w", key, err)
	}

	ctf.Micrograph = mic
	return ctf, nil
}

// parseTxt reads the CTFFIND4 .txt output: comment lines starting with
// '#', then one data row per micrograph with columns
// number, defocus1 [A], defocus2 [A], azimuth [deg], phase shift [rad],
// cross correlation, fit resolution [A]. The last row wins.
func parseTxt(body []byte) (*emobj.CTF, error) {

	var last []string

	scanner := bufio.NewScanner(bytes.NewReader(body))

	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		if len(fields) >= 7 {
			last = fields
		}
	}

	if last == nil {
		return nil, fmt.Errorf("No data rows found")
	}

	vals := make([]float64, 7)

	for i := 0; i < 7; i++ {

		v, err := strconv.ParseFloat(last[i], 64)

		if err != nil {
			return nil, fmt.Errorf("Bad column %d '%s', %w", i+1, last[i], err)
		}

		vals[i] = v
	}

	ctf := &emobj.CTF{
		DefocusU:     vals[1],
		DefocusV:     vals[2],
		DefocusAngle: vals[3],
		PhaseShift:   radToDeg(vals[4]),
		FitQuality:   vals[5],
		Resolution:   vals[6],
	}

	return ctf, nil
}

// parseLog reads the CTFFIND3-style log, looking for the line tagged
// "Final Values". Four leading numbers are DFMID1, DFMID2, ANGAST, CC;
// five mean a phase shift (radians) was fitted between ANGAST and CC.
func parseLog(body []byte) (*emobj.CTF, error) {

	scanner := bufio.NewScanner(bytes.NewReader(body))

	for scanner.Scan() {

		line := scanner.Text()

		if !strings.Contains(line, "Final Values") {
			continue
		}

		fields := strings.Fields(line)
		vals := make([]float64, 0, len(fields))

		for _, f := range fields {

			v, err := strconv.ParseFloat(f, 64)

			if err != nil {
				break
			}

			vals = append(vals, v)
		}

		switch len(vals) {

		case 4:

			ctf := &emobj.CTF{
				DefocusU:     vals[0],
				DefocusV:     vals[1],
				DefocusAngle: vals[2],
				FitQuality:   vals[3],
			}

			return ctf, nil

		case 5:

			ctf := &emobj.CTF{
				DefocusU:     vals[0],
				DefocusV:     vals[1],
				DefocusAngle: vals[2],
				PhaseShift:   radToDeg(vals[3]),
				FitQuality:   vals[4],
			}

			return ctf, nil

		default:
			return nil, fmt.Errorf("Unexpected 'Final Values' line with %d numeric fields", len(vals))
		}
	}

	return nil, fmt.Errorf("No 'Final Values' line found")
}

func radToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

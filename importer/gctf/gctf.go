// Package gctf imports CTF estimates from Gctf .log output.
package gctf

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/importer"
	"gocloud.dev/blob"
)

func init() {

	err := importer.Register("gctf", func(ctx context.Context, bucket *blob.Bucket) (importer.Importer, error) {
		return &Importer{bucket: bucket}, nil
	})

	if err != nil {
		panic(err)
	}
}

type Importer struct {
	bucket *blob.Bucket
}

// ImportCTF parses a Gctf log. Gctf mimics CTFFIND's "Final Values" line
// (Defocus_U, Defocus_V, Angle, CCC) and additionally reports the
// resolution limit estimated by equi-phase averaging.
func (im *Importer) ImportCTF(ctx context.Context, mic *emobj.Micrograph, key string) (*emobj.CTF, error) {

	body, err := importer.ReadAll(ctx, im.bucket, key)

	if err != nil {
		return nil, err
	}

	var ctf *emobj.CTF
	resolution := 0.0

	scanner := bufio.NewScanner(bytes.NewReader(body))

	for scanner.Scan() {

		line := scanner.Text()

		if strings.Contains(line, "Final Values") {

			vals := leadingFloats(line)

			if len(vals) < 4 {
				return nil, fmt.Errorf("Unexpected 'Final Values' line in %s", key)
			}

			ctf = &emobj.CTF{
				DefocusU:     vals[0],
				DefocusV:     vals[1],
				DefocusAngle: vals[2],
				FitQuality:   vals[3],
			}

			continue
		}

		if strings.Contains(line, "Resolution limit estimated by EPA") {

			idx := strings.LastIndex(line, ":")

			if idx == -1 {
				continue
			}

			v, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)

			if err == nil {
				resolution = v
			}
		}
	}

	if ctf == nil {
		return nil, fmt.Errorf("No 'Final Values' line found in %s", key)
	}

	ctf.Resolution = resolution
	ctf.Micrograph = mic
	return ctf, nil
}

func leadingFloats(line string) []float64 {

	fields := strings.Fields(line)
	vals := make([]float64, 0, len(fields))

	for _, f := range fields {

		v, err := strconv.ParseFloat(f, 64)

		if err != nil {
			break
		}

		vals = append(vals, v)
	}

	return vals
}

// Package xmipp imports CTF estimates from Xmipp .ctfparam metadata
// files: one key/value pair per line, keys prefixed with underscores.
package xmipp

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

	err := importer.Register("xmipp", func(ctx context.Context, bucket *blob.Bucket) (importer.Importer, error) {
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

	values := make(map[string]float64)

	scanner := bufio.NewScanner(bytes.NewReader(body))

	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())

		if !strings.HasPrefix(line, "_") {
			continue
		}

		fields := strings.Fields(line)

		if len(fields) != 2 {
			continue
		}

		v, err := strconv.ParseFloat(fields[1], 64)

		if err != nil {
			continue
		}

		values[fields[0]] = v
	}

	defocus_u, ok_u := values["_ctfDefocusU"]
	defocus_v, ok_v := values["_ctfDefocusV"]

	if !ok_u {
		return nil, fmt.Errorf("Missing _ctfDefocusU in %s", key)
	}

	if !ok_v {
		// old single-defocus files only record U
		defocus_v = defocus_u
	}

	ctf := &emobj.CTF{
		DefocusU:     defocus_u,
		DefocusV:     defocus_v,
		DefocusAngle: values["_ctfDefocusAngle"],
		PhaseShift:   values["_ctfVPPphaseshift"],
		FitQuality:   values["_ctfCritFitting"],
		Resolution:   values["_ctfCritMaxFreq"],
		Micrograph:   mic,
	}

	return ctf, nil
}

// Package eman2 imports CTF estimates from EMAN2 per-micrograph .json
// files. EMAN2 records defocus in microns with an astigmatism difference
// (dfdiff) and angle (dfang); values are converted to defocus U/V in
// Angstroms on import.
package eman2

import (
	"context"
	"fmt"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/importer"
	"github.com/tidwall/gjson"
	"gocloud.dev/blob"
)

func init() {

	err := importer.Register("eman2", func(ctx context.Context, bucket *blob.Bucket) (importer.Importer, error) {
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

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("Invalid JSON in %s", key)
	}

	defocus_rsp := lookup(body, "defocus")

	if !defocus_rsp.Exists() {
		return nil, fmt.Errorf("Missing defocus in %s", key)
	}

	defocus := defocus_rsp.Float()
	dfdiff := lookup(body, "dfdiff").Float()
	dfang := lookup(body, "dfang").Float()

	ctf := &emobj.CTF{
		DefocusU:     (defocus + dfdiff/2.0) * 1e4,
		DefocusV:     (defocus - dfdiff/2.0) * 1e4,
		DefocusAngle: dfang,
		Micrograph:   mic,
	}

	return ctf, nil
}

// lookup finds a CTF parameter either at the top level of the document or
// inside the serialised EMAN2Ctf object EMAN2's info files wrap it in
// (a two-element array of type tag and parameter dict).
func lookup(body []byte, param string) gjson.Result {

	rsp := gjson.GetBytes(body, param)

	if rsp.Exists() {
		return rsp
	}

	return gjson.GetBytes(body, fmt.Sprintf("ctf.1.%s", param))
}

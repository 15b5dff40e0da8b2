package deposit

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emkit/go-em-deposit/common"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/tidwall/sjson"
	"github.com/whosonfirst/go-ioutil"
)

// writeManifestStep records what the run exported: one fingerprint per
// file, plus snapshot metadata, as a JSON document in the target bucket.
// When a manifest writer URI is configured the document is also published
// through it.
func (d *Deposition) writeManifestStep(ctx context.Context) error {

	body := []byte("{}")

	now := time.Now()

	var err error

	updates := map[string]interface{}{
		"deposition.created": now.Unix(),
		"deposition.files":   map[string]interface{}{},
	}

	for path, value := range updates {

		body, err = sjson.SetBytes(body, path, value)

		if err != nil {
			return fmt.Errorf("Failed to assign %s property, %w", path, err)
		}
	}

	for _, key := range d.exported {

		fp, err := common.FingerprintFile(ctx, d.opts.Target, key)

		if err != nil {
			return fmt.Errorf("Failed to fingerprint %s, %w", key, err)
		}

		// bucket keys contain dots and slashes, neither of which sjson
		// may treat as path syntax here
		safe_key := strings.NewReplacer(".", "\\.", "/", "\\/").Replace(key)

		body, err = sjson.SetBytes(body, fmt.Sprintf("deposition.files.%s.fingerprint", safe_key), fp)

		if err != nil {
			return fmt.Errorf("Failed to record fingerprint for %s, %w", key, err)
		}
	}

	if d.opts.Picture != "" {

		body, err = d.appendSnapshot(ctx, body)

		if err != nil {
			return fmt.Errorf("Failed to record snapshot metadata, %w", err)
		}
	}

	wr, err := d.opts.Target.NewWriter(ctx, ManifestName, d.writerOptions())

	if err != nil {
		return fmt.Errorf("Failed to create writer for %s, %w", ManifestName, err)
	}

	_, err = wr.Write(body)

	if err != nil {
		wr.Close()
		d.opts.Target.Delete(ctx, ManifestName)
		return fmt.Errorf("Failed to write %s, %w", ManifestName, err)
	}

	err = wr.Close()

	if err != nil {
		return fmt.Errorf("Failed to close writer for %s, %w", ManifestName, err)
	}

	if d.opts.ManifestWriterURI != "" {

		err = d.publishManifest(ctx, body)

		if err != nil {
			return fmt.Errorf("Failed to publish manifest, %w", err)
		}
	}

	return nil
}

func (d *Deposition) appendSnapshot(ctx context.Context, body []byte) ([]byte, error) {

	fname := filepath.Base(d.opts.Picture)
	ext := filepath.Ext(fname)

	var err error

	t := mime.TypeByExtension(ext)

	if t != "" {

		body, err = sjson.SetBytes(body, "deposition.snapshot.mimetype", t)

		if err != nil {
			return nil, err
		}
	}

	body, err = sjson.SetBytes(body, "deposition.snapshot.filename", fname)

	if err != nil {
		return nil, err
	}

	hashes, err := common.ImageHashes(ctx, d.opts.Target, fname)

	if err != nil {
		d.logger.Warn("Failed to hash snapshot image", "path", fname, "error", err)
	} else {

		for _, h := range hashes {

			k := fmt.Sprintf("deposition.snapshot.imagehash_%s", h.Approach)

			body, err = sjson.SetBytes(body, k, h.Hash)

			if err != nil {
				return nil, err
			}
		}
	}

	created := snapshotCreated(d.opts.Picture)

	if !created.IsZero() {

		body, err = sjson.SetBytes(body, "deposition.snapshot.created", created.Unix())

		if err != nil {
			return nil, err
		}
	}

	return body, nil
}

// snapshotCreated pulls the capture time out of a JPEG snapshot's EXIF
// block. A zero time means there was nothing usable, which is fine.
func snapshotCreated(path string) time.Time {

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		// pass
	default:
		return time.Time{}
	}

	fh, err := os.Open(path)

	if err != nil {
		return time.Time{}
	}

	defer fh.Close()

	exif.RegisterParsers(mknote.All...)

	im_exif, err := exif.Decode(fh)

	if err != nil {
		return time.Time{}
	}

	tag, err := im_exif.Get("DateTimeOriginal")

	if err != nil {
		return time.Time{}
	}

	str_dt := tag.String()
	str_dt = strings.Trim(str_dt, "\"")

	exif_fmt := "2006:01:02 15:04:05"

	t, err := time.Parse(exif_fmt, str_dt)

	if err != nil {
		return time.Time{}
	}

	return t
}

func (d *Deposition) publishManifest(ctx context.Context, body []byte) error {

	wr, err := common.NewWriter(ctx, d.opts.ManifestWriterURI)

	if err != nil {
		return err
	}

	br := bytes.NewReader(body)

	fh, err := ioutil.NewReadSeekCloser(br)

	if err != nil {
		return fmt.Errorf("Failed to create ReadSeekCloser for manifest, %w", err)
	}

	_, err = wr.Write(ctx, ManifestName, fh)

	if err != nil {
		return fmt.Errorf("Failed to write manifest to %s, %w", d.opts.ManifestWriterURI, err)
	}

	return nil
}

// Package convert is the image-format converter used when assembling a
// deposition package. Source volumes live on the local filesystem (project
// data); converted maps are written to a target bucket in normalised
// MRC2014 form.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emkit/go-em-deposit/mrc"
	"gocloud.dev/blob"
)

// DecodeFunc reads a volume at path and returns its header and data as
// float32 samples.
type DecodeFunc func(path string) (*mrc.Header, []float32, error)

var decoders = make(map[string]DecodeFunc)
var decoders_mu = new(sync.RWMutex)

// RegisterDecoder associates a filename extension (with leading dot) with
// a decoder. Registering the same extension twice is an error.
func RegisterDecoder(ext string, fn DecodeFunc) error {

	decoders_mu.Lock()
	defer decoders_mu.Unlock()

	ext = strings.ToLower(ext)

	_, exists := decoders[ext]

	if exists {
		return fmt.Errorf("Decoder for '%s' is already registered", ext)
	}

	decoders[ext] = fn
	return nil
}

func init() {

	mrc_decode := func(path string) (*mrc.Header, []float32, error) {

		f, err := mrc.OpenFile(path)

		if err != nil {
			return nil, nil, err
		}

		defer f.Close()

		data, err := f.Data()

		if err != nil {
			return nil, nil, err
		}

		return f.Header, data, nil
	}

	for _, ext := range []string{".mrc", ".map", ".mrcs", ".rec"} {
		RegisterDecoder(ext, mrc_decode)
	}

	for _, ext := range []string{".spi", ".vol", ".xmp"} {
		RegisterDecoder(ext, DecodeSpider)
	}
}

// DecoderFor resolves a decoder for path, first by extension and then by
// sniffing the file contents when the extension is unknown.
func DecoderFor(path string) (DecodeFunc, error) {

	ext := strings.ToLower(filepath.Ext(path))

	decoders_mu.RLock()
	fn, ok := decoders[ext]
	decoders_mu.RUnlock()

	if ok {
		return fn, nil
	}

	format, err := sniffFormat(path)

	if err != nil {
		return nil, err
	}

	decoders_mu.RLock()
	fn, ok = decoders[format]
	decoders_mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("No decoder registered for '%s'", format)
	}

	return fn, nil
}

// sniffFormat looks inside a file to guess its format when the extension
// is no help. Returns the canonical extension for a registered decoder.
func sniffFormat(path string) (string, error) {

	fh, err := os.Open(path)

	if err != nil {
		return "", fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	head := make([]byte, 1024)

	n, _ := io.ReadFull(fh, head)

	if n < 256 {
		return "", fmt.Errorf("Failed to sniff format of %s, file too short", path)
	}

	if string(head[208:211]) == "MAP" {
		return ".mrc", nil
	}

	if looksLikeSpider(head) {
		return ".spi", nil
	}

	return "", fmt.Errorf("Unrecognized volume format for %s", path)
}

// ConvertOptions adjusts how a volume is re-encoded.
type ConvertOptions struct {
	// Voxel size in Angstroms to stamp into the output cell. When zero the
	// source header's cell is kept.
	SamplingRate float64
	// Options passed to the bucket writer (ACLs and so on).
	WriterOptions *blob.WriterOptions
}

// Convert decodes the volume at src and writes it to dst in the target
// bucket as a normalised mode 2 MRC2014 map. Same-format sources are still
// decoded and re-encoded so the output header is canonical.
func Convert(ctx context.Context, src string, bucket *blob.Bucket, dst string, opts *ConvertOptions) error {

	if opts == nil {
		opts = &ConvertOptions{}
	}

	decode, err := DecoderFor(src)

	if err != nil {
		return err
	}

	hdr, data, err := decode(src)

	if err != nil {
		return fmt.Errorf("Failed to decode %s, %w", src, err)
	}

	out := *hdr

	if opts.SamplingRate > 0 {

		if out.Mx == 0 || out.My == 0 || out.Mz == 0 {
			out.Mx = out.Nx
			out.My = out.Ny
			out.Mz = out.Nz
		}

		out.CellA[0] = float32(opts.SamplingRate * float64(out.Mx))
		out.CellA[1] = float32(opts.SamplingRate * float64(out.My))
		out.CellA[2] = float32(opts.SamplingRate * float64(out.Mz))
	}

	select {
	case <-ctx.Done():
		return nil
	default:
		// pass
	}

	wr, err := bucket.NewWriter(ctx, dst, opts.WriterOptions)

	if err != nil {
		return fmt.Errorf("Failed to create writer for %s, %w", dst, err)
	}

	err = mrc.Write(wr, &out, data)

	if err != nil {
		wr.Close()
		bucket.Delete(ctx, dst)
		return fmt.Errorf("Failed to write %s, %w", dst, err)
	}

	err = wr.Close()

	if err != nil {
		return fmt.Errorf("Failed to close writer for %s, %w", dst, err)
	}

	return nil
}

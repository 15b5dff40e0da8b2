package common

import (
	"context"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"
)

// CopyFileOptions describes a file copy into a deposition bucket.
type CopyFileOptions struct {
	Target *blob.Bucket
	// Key to write in the target bucket.
	Path string
	// Skip the copy when the target already exists, unless Force is set.
	Force bool
	// Options passed to the bucket writer (ACLs and so on).
	WriterOptions *blob.WriterOptions
}

// CopyToBucket copies a local file into a bucket. A partial write is
// deleted rather than left behind.
func CopyToBucket(ctx context.Context, src string, opts *CopyFileOptions) error {

	fh, err := os.Open(src)

	if err != nil {
		return fmt.Errorf("Failed to open %s, %w", src, err)
	}

	defer fh.Close()

	return copyReader(ctx, fh, opts)
}

// CopyBetweenBuckets copies an object from one bucket to another.
func CopyBetweenBuckets(ctx context.Context, source *blob.Bucket, src string, opts *CopyFileOptions) error {

	fh, err := source.NewReader(ctx, src, nil)

	if err != nil {
		return fmt.Errorf("Failed to create reader for %s, %w", src, err)
	}

	defer fh.Close()

	return copyReader(ctx, fh, opts)
}

func copyReader(ctx context.Context, fh io.Reader, opts *CopyFileOptions) error {

	select {
	case <-ctx.Done():
		return nil
	default:
		// pass
	}

	if !opts.Force {

		exists, err := opts.Target.Exists(ctx, opts.Path)

		if err != nil {
			return fmt.Errorf("Failed to determine whether %s exists, %w", opts.Path, err)
		}

		if exists {
			return nil
		}
	}

	wr, err := opts.Target.NewWriter(ctx, opts.Path, opts.WriterOptions)

	if err != nil {
		return fmt.Errorf("Failed to create writer for %s, %w", opts.Path, err)
	}

	_, err = io.Copy(wr, fh)

	if err != nil {
		wr.Close()
		opts.Target.Delete(ctx, opts.Path)
		return fmt.Errorf("Failed to copy to %s, %w", opts.Path, err)
	}

	err = wr.Close()

	if err != nil {
		return fmt.Errorf("Failed to close writer for %s, %w", opts.Path, err)
	}

	return nil
}

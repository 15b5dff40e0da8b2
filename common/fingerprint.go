package common

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"
)

// FingerprintFile generates the SHA-1 hash of a file stored in a
// blob.Bucket instance. Deposition manifests record one per exported file
// so a submission can be verified after upload.
func FingerprintFile(ctx context.Context, bucket *blob.Bucket, path string) (string, error) {

	fh, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return "", fmt.Errorf("Failed to create reader for %s, %w", path, err)
	}

	defer fh.Close()

	return fingerprint(fh)
}

// HashFile generates the SHA-1 hash of a file on the local filesystem.
func HashFile(path string) (string, error) {

	fh, err := os.Open(path)

	if err != nil {
		return "", fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	return fingerprint(fh)
}

func fingerprint(r io.Reader) (string, error) {

	h := sha1.New()

	_, err := io.Copy(h, r)

	if err != nil {
		return "", err
	}

	hash := h.Sum(nil)
	return hex.EncodeToString(hash[:]), nil
}

// Package importer resolves per-tool CTF importers dynamically by name.
// Tool packages register themselves in init() and are wired in with blank
// imports, the same way gocloud blob drivers are.
package importer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/emkit/go-em-deposit/emobj"
	"gocloud.dev/blob"
)

// Importer parses the CTF estimate a tool wrote for a micrograph.
type Importer interface {
	// ImportCTF reads the file stored at key in the importer's source
	// bucket and returns the CTF estimate for mic.
	ImportCTF(ctx context.Context, mic *emobj.Micrograph, key string) (*emobj.CTF, error)
}

// InitFunc builds an Importer reading from the given source bucket.
type InitFunc func(ctx context.Context, bucket *blob.Bucket) (Importer, error)

var importers = make(map[string]InitFunc)
var importers_mu = new(sync.RWMutex)

// Register associates a tool name with an importer constructor.
// Registering the same name twice is an error.
func Register(name string, fn InitFunc) error {

	importers_mu.Lock()
	defer importers_mu.Unlock()

	_, exists := importers[name]

	if exists {
		return fmt.Errorf("Importer '%s' is already registered", name)
	}

	importers[name] = fn
	return nil
}

// NewImporter resolves a registered importer by name.
func NewImporter(ctx context.Context, name string, bucket *blob.Bucket) (Importer, error) {

	importers_mu.RLock()
	fn, ok := importers[name]
	importers_mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("Unknown importer '%s', registered importers are: %s", name, strings.Join(Schemes(), ", "))
	}

	return fn(ctx, bucket)
}

// Schemes returns the sorted names of all registered importers.
func Schemes() []string {

	importers_mu.RLock()
	defer importers_mu.RUnlock()

	names := make([]string, 0, len(importers))

	for name := range importers {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// DetectFormat guesses which tool produced a set of candidate files from
// their extensions. Plain logs default to ctffind, which is what the
// original tooling assumes for .log/.txt/.out output.
func DetectFormat(files []string) (string, error) {

	for _, f := range files {

		switch strings.ToLower(filepath.Ext(f)) {
		case ".log", ".txt", ".out":
			return "ctffind", nil
		case ".ctfparam":
			return "xmipp", nil
		case ".json":
			return "eman2", nil
		case ".sqlite", ".db":
			return "scipion", nil
		default:
			// pass
		}
	}

	return "", fmt.Errorf("Failed to detect a CTF format from %d candidate files", len(files))
}

// ReadAll reads the full contents of key from bucket. A convenience shared
// by the text-format importers.
func ReadAll(ctx context.Context, bucket *blob.Bucket, key string) ([]byte, error) {

	r, err := bucket.NewReader(ctx, key, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for %s, %w", key, err)
	}

	defer r.Close()

	body, err := io.ReadAll(r)

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", key, err)
	}

	return body, nil
}

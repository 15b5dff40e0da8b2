// Package importctf imports externally computed CTF estimates and
// associates them with the micrographs of a project. The per-tool parsing
// is delegated to importer plug-ins resolved by name; the work done here
// is deciding which file belongs to which micrograph.
package importctf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/importer"
	"gocloud.dev/blob"
)

// FormatAuto asks the run to detect the producing tool from the candidate
// file extensions.
const FormatAuto = "auto"

// ImportOptions describes a CTF import run.
type ImportOptions struct {
	// Bucket holding the externally produced CTF files.
	Source *blob.Bucket
	// Prefix within the source bucket to search under.
	FilesPath string
	// Glob matched against candidate file names. Defaults to "*".
	FilesPattern string
	// Importer name, or "auto".
	Format string
	// The micrographs the estimates were computed for.
	Micrographs *emobj.SetOfMicrographs
}

// ImportResult holds what a run produced.
type ImportResult struct {
	// One estimate per matched micrograph.
	CTFs *emobj.SetOfCTFs
	// When one or more micrographs had no CTF, the reduced micrograph
	// set; nil when every micrograph matched.
	Micrographs *emobj.SetOfMicrographs
}

// Import is a single import run.
type Import struct {
	opts   *ImportOptions
	logger *slog.Logger
}

// NewImport validates opts and returns a run ready to go.
func NewImport(opts *ImportOptions) (*Import, error) {

	if opts.Source == nil {
		return nil, fmt.Errorf("Missing source bucket")
	}

	if opts.Micrographs == nil || opts.Micrographs.Len() == 0 {
		return nil, fmt.Errorf("Missing input micrographs")
	}

	if opts.FilesPattern == "" {
		opts.FilesPattern = "*"
	}

	if opts.Format == "" {
		opts.Format = FormatAuto
	}

	im := &Import{
		opts:   opts,
		logger: slog.Default().With("operation", "import-ctf"),
	}

	return im, nil
}

// Run imports the estimates. Per-micrograph problems are warnings; only
// an empty candidate list or an unresolvable importer fails the run.
func (im *Import) Run(ctx context.Context) (*ImportResult, error) {

	files, err := im.listFiles(ctx)

	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("No files were found in path: '%s' matching the pattern: '%s'", im.opts.FilesPath, im.opts.FilesPattern)
	}

	format := im.opts.Format

	if format == FormatAuto {

		format, err = importer.DetectFormat(files)

		if err != nil {
			return nil, err
		}

		im.logger.Info("Detected CTF format", "format", format)
	}

	ci, err := importer.NewImporter(ctx, format, im.opts.Source)

	if err != nil {
		return nil, err
	}

	input_mics := im.opts.Micrographs

	if len(files) > input_mics.Len() {
		im.logger.Warn("The number of files matched by your pattern is larger than the number of available micrographs. It is advised to carefully review the output of this run or to re-run with a more restrictive pattern.",
			"files", len(files), "micrographs", input_mics.Len())
	}

	ctf_set := emobj.NewSetOfCTFs()
	ctf_set.SetMicrographs(input_mics)

	output_mics := emobj.NewSetOfMicrographs()
	output_mics.CopyInfo(input_mics)

	create_output_mics := false

	m := &matcher{
		files:  files,
		mics:   input_mics,
		ci:     ci,
		logger: im.logger,
	}

	for _, mic := range input_mics.Items() {

		ctf := m.findCTF(ctx, mic)

		if ctf != nil {
			ctf_set.Append(ctf)
			output_mics.Append(mic)
			continue
		}

		// If no CTF is found for a micrograph remove it from the output
		// micrographs.
		im.logger.Warn("CTF for micrograph was not found. Removed from set of micrographs.", "id", mic.ID, "filename", mic.FileName)
		create_output_mics = true
	}

	rsp := &ImportResult{
		CTFs: ctf_set,
	}

	if create_output_mics {
		rsp.Micrographs = output_mics
	}

	return rsp, nil
}

// listFiles walks the source bucket and returns the keys matching the
// configured prefix and pattern.
func (im *Import) listFiles(ctx context.Context) ([]string, error) {

	files := make([]string, 0)

	list_opts := &blob.ListOptions{
		Prefix: im.opts.FilesPath,
	}

	iter := im.opts.Source.List(list_opts)

	for {

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			// pass
		}

		obj, err := iter.Next(ctx)

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("Failed to list source bucket, %w", err)
		}

		if obj.IsDir {
			continue
		}

		target := filepath.Base(obj.Key)

		if strings.Contains(im.opts.FilesPattern, "/") {
			target = obj.Key
		}

		matched, err := path.Match(im.opts.FilesPattern, target)

		if err != nil {
			return nil, fmt.Errorf("Invalid pattern '%s', %w", im.opts.FilesPattern, err)
		}

		if !matched {
			continue
		}

		files = append(files, obj.Key)
	}

	return files, nil
}

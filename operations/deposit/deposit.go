// Package deposit assembles an EMDB/PDB submission package: maps, masks,
// FSC curves and the atomic structure are converted to deposition formats
// and written to a target bucket, together with a manifest describing
// what was exported.
package deposit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aaronland/go-string/random"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/emkit/go-em-deposit/atomstruct"
	"github.com/emkit/go-em-deposit/common"
	"github.com/emkit/go-em-deposit/convert"
	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/fsc"
	"gocloud.dev/blob"
)

// File names EMDB expects inside a submission package.
const (
	VolumeName           = "main_map.mrc"
	HalfVolumeName       = "half_map_%d.mrc"
	CoordinateFileName   = "coordinates.cif"
	AdditionalVolumeDir  = "addMaps"
	AdditionalVolumeName = "map_%02d.mrc"
	MaskDir              = "masks"
	MaskName             = "mask_%02d.mrc"
	FSCName              = "fsc_%02d.xml"
	ManifestName         = "deposition.json"
)

// DepositionOptions describes everything a submission package may carry.
// Only Target is mandatory; steps whose inputs are absent are skipped.
type DepositionOptions struct {
	// The main EM map. Mandatory for EMDB submissions; exported in MRC
	// format. Its half maps, when present, travel with it.
	MainMap *emobj.Volume
	// Additional maps, exported under addMaps/.
	AdditionalMaps []*emobj.Volume
	// Masks, exported under masks/.
	Masks []*emobj.Mask
	// FSC curves, exported as XML.
	FSCs *fsc.SetOfFSCs
	// The atomic structure, exported as mmCIF.
	Structure *emobj.AtomStruct
	// Local path of the snapshot image EMDB asks for. Copied verbatim.
	Picture string
	// Where the package is written.
	Target *blob.Bucket
	// Optional go-writer URI the manifest is also published through.
	ManifestWriterURI string
	// Overwrite files already present in the target.
	Force bool
	// Set a public-read ACL when the target is S3.
	PublicRead bool
}

// Deposition is a single export run.
type Deposition struct {
	opts     *DepositionOptions
	logger   *slog.Logger
	exported []string
}

type step struct {
	label   string
	enabled bool
	fn      func(context.Context) error
}

// NewDeposition validates opts and returns a run ready to go.
func NewDeposition(opts *DepositionOptions) (*Deposition, error) {

	messages := Validate(opts)

	if len(messages) > 0 {
		return nil, fmt.Errorf("Invalid deposition: %s", strings.Join(messages, "; "))
	}

	d := &Deposition{
		opts:     opts,
		logger:   slog.Default().With("operation", "deposit"),
		exported: make([]string, 0),
	}

	return d, nil
}

// Validate applies the checks a run refuses to start without.
func Validate(opts *DepositionOptions) []string {

	messages := make([]string, 0)

	if opts.Target == nil {
		messages = append(messages, "You must set a target to export to")
	}

	if opts.MainMap != nil && opts.MainMap.SamplingRate <= 0 {
		messages = append(messages, "The main map has no voxel size")
	}

	return messages
}

// Run executes the export steps once, in order, and returns a summary.
// Export steps fail hard: a broken input means a broken submission.
func (d *Deposition) Run(ctx context.Context) (string, error) {

	steps := []step{
		{"export main map", d.opts.MainMap != nil, d.exportVolumeStep},
		{"export additional maps", len(d.opts.AdditionalMaps) > 0, d.exportAdditionalVolumesStep},
		{"export FSC curves", d.opts.FSCs != nil && d.opts.FSCs.Len() > 0, d.exportFSCStep},
		{"export masks", len(d.opts.Masks) > 0, d.exportMasksStep},
		{"export atomic structure", d.opts.Structure != nil, d.exportAtomStructStep},
		{"export snapshot image", d.opts.Picture != "", d.exportImageStep},
		{"write manifest", true, d.writeManifestStep},
	}

	for _, s := range steps {

		if !s.enabled {
			d.logger.Debug("Skipping step", "step", s.label)
			continue
		}

		d.logger.Info("Running step", "step", s.label)

		err := s.fn(ctx)

		if err != nil {
			return "", fmt.Errorf("Failed to %s, %w", s.label, err)
		}
	}

	return fmt.Sprintf("Data available at *%s*", ManifestName), nil
}

// Exported returns the bucket keys written so far, in export order.
func (d *Deposition) Exported() []string {
	return d.exported
}

func (d *Deposition) writerOptions() *blob.WriterOptions {

	if !d.opts.PublicRead {
		return nil
	}

	before := func(asFunc func(interface{}) bool) error {

		s3_req := &s3manager.UploadInput{}
		ok := asFunc(&s3_req)

		if ok {
			s3_req.ACL = aws.String("public-read")
		}

		return nil
	}

	return &blob.WriterOptions{
		BeforeWrite: before,
	}
}

func (d *Deposition) convertVolume(ctx context.Context, src string, dst string, sampling float64) error {

	opts := &convert.ConvertOptions{
		SamplingRate:  sampling,
		WriterOptions: d.writerOptions(),
	}

	err := convert.Convert(ctx, src, d.opts.Target, dst, opts)

	if err != nil {
		return err
	}

	d.exported = append(d.exported, dst)
	return nil
}

func (d *Deposition) exportVolumeStep(ctx context.Context) error {

	vol := d.opts.MainMap

	err := d.convertVolume(ctx, vol.Location, VolumeName, vol.SamplingRate)

	if err != nil {
		return err
	}

	// Do we have half maps?
	for counter, half_map := range vol.HalfMaps {

		dst := fmt.Sprintf(HalfVolumeName, counter+1)

		err := d.convertVolume(ctx, half_map, dst, vol.SamplingRate)

		if err != nil {
			return err
		}
	}

	return nil
}

func (d *Deposition) exportAdditionalVolumesStep(ctx context.Context) error {

	for counter, vol := range d.opts.AdditionalMaps {

		dst := filepath.Join(AdditionalVolumeDir, fmt.Sprintf(AdditionalVolumeName, counter+1))

		err := d.convertVolume(ctx, vol.Location, dst, vol.SamplingRate)

		if err != nil {
			return err
		}
	}

	return nil
}

func (d *Deposition) exportMasksStep(ctx context.Context) error {

	for counter, mask := range d.opts.Masks {

		dst := filepath.Join(MaskDir, fmt.Sprintf(MaskName, counter+1))

		err := d.convertVolume(ctx, mask.Location, dst, mask.SamplingRate)

		if err != nil {
			return err
		}
	}

	return nil
}

func (d *Deposition) exportFSCStep(ctx context.Context) error {

	for i, curve := range d.opts.FSCs.Items() {

		if curve.Title == "" {
			curve.Title = fmt.Sprintf("FSC(%s)", VolumeName)
		}

		dst := fmt.Sprintf(FSCName, i+1)

		wr, err := d.opts.Target.NewWriter(ctx, dst, d.writerOptions())

		if err != nil {
			return fmt.Errorf("Failed to create writer for %s, %w", dst, err)
		}

		err = curve.WriteXML(wr)

		if err != nil {
			wr.Close()
			d.opts.Target.Delete(ctx, dst)
			return fmt.Errorf("Failed to write %s, %w", dst, err)
		}

		err = wr.Close()

		if err != nil {
			return fmt.Errorf("Failed to close writer for %s, %w", dst, err)
		}

		d.exported = append(d.exported, dst)
	}

	return nil
}

func (d *Deposition) exportAtomStructStep(ctx context.Context) error {

	src := d.opts.Structure.FileName

	tmp, err := scratchPath("coordinates", ".cif")

	if err != nil {
		return err
	}

	defer os.Remove(tmp)

	switch strings.ToLower(filepath.Ext(src)) {

	case ".pdb", ".ent":

		err = atomstruct.FromPDBToCIF(src, tmp)

		if err != nil {
			return err
		}

		err = atomstruct.FromCIFToMmCIF(tmp, tmp)

	case ".cif", ".mmcif":

		err = atomstruct.FromCIFToMmCIF(src, tmp)

	default:
		return fmt.Errorf("Unsupported structure format '%s'", filepath.Ext(src))
	}

	if err != nil {
		return err
	}

	copy_opts := &common.CopyFileOptions{
		Target:        d.opts.Target,
		Path:          CoordinateFileName,
		Force:         true,
		WriterOptions: d.writerOptions(),
	}

	err = common.CopyToBucket(ctx, tmp, copy_opts)

	if err != nil {
		return err
	}

	d.exported = append(d.exported, CoordinateFileName)
	return nil
}

func (d *Deposition) exportImageStep(ctx context.Context) error {

	dst := filepath.Base(d.opts.Picture)

	copy_opts := &common.CopyFileOptions{
		Target:        d.opts.Target,
		Path:          dst,
		Force:         d.opts.Force,
		WriterOptions: d.writerOptions(),
	}

	err := common.CopyToBucket(ctx, d.opts.Picture, copy_opts)

	if err != nil {
		return err
	}

	d.exported = append(d.exported, dst)
	return nil
}

// scratchPath returns a temp-file path with a random suffix, so two runs
// converting the same structure never collide.
func scratchPath(prefix string, ext string) (string, error) {

	rand_opts := random.DefaultOptions()
	rand_opts.AlphaNumeric = true

	suffix, err := random.String(rand_opts)

	if err != nil {
		return "", fmt.Errorf("Failed to generate scratch suffix, %w", err)
	}

	return filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s%s", prefix, suffix, ext)), nil
}

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/fsc"
	"github.com/emkit/go-em-deposit/mrc"
	"github.com/emkit/go-em-deposit/operations/deposit"
	"github.com/emkit/go-em-deposit/params"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

func main() {

	request := flag.String("request", "", "Path to a yaml file with the export request.")
	sampling := flag.Float64("sampling-rate", 0.0, "Voxel size in A/px for the exported maps. When 0 the value is read from the main map header.")
	manifest_writer_uri := flag.String("manifest-writer-uri", "", "Optional whosonfirst/go-writer URI to publish the manifest through.")
	force := flag.Bool("force", false, "Overwrite files already present in the target.")
	public_read := flag.Bool("public-read", false, "Set a public-read ACL when the target is S3.")

	flag.Parse()

	ctx := context.Background()

	if *request == "" {
		log.Fatal("Missing -request")
	}

	form := deposit.Form()

	values, err := params.LoadValuesFromPath(*request, form)

	if err != nil {
		log.Fatal(err)
	}

	target_uri := params.StringValue(values, "files_path")

	// fileblob expects the directory to exist
	if strings.HasPrefix(target_uri, "file://") {

		err = os.MkdirAll(strings.TrimPrefix(target_uri, "file://"), 0755)

		if err != nil {
			log.Fatal(err)
		}
	}

	target, err := blob.OpenBucket(ctx, target_uri)

	if err != nil {
		log.Fatal(err)
	}

	defer target.Close()

	opts := &deposit.DepositionOptions{
		Target:            target,
		Picture:           params.StringValue(values, "export_picture"),
		ManifestWriterURI: *manifest_writer_uri,
		Force:             *force,
		PublicRead:        *public_read,
	}

	main_map := params.StringValue(values, "export_volume")

	if main_map != "" {

		vol, err := loadVolume(main_map, *sampling)

		if err != nil {
			log.Fatal(err)
		}

		vol.HalfMaps = params.StringListValue(values, "half_maps")
		opts.MainMap = vol
	}

	if params.BoolValue(values, form, "additional_volumes") {

		for _, path := range params.StringListValue(values, "export_additional_volumes") {

			vol, err := loadVolume(path, *sampling)

			if err != nil {
				log.Fatal(err)
			}

			opts.AdditionalMaps = append(opts.AdditionalMaps, vol)
		}
	}

	if params.BoolValue(values, form, "masks") {

		for _, path := range params.StringListValue(values, "export_masks") {

			vol, err := loadVolume(path, *sampling)

			if err != nil {
				log.Fatal(err)
			}

			mask := &emobj.Mask{
				Location:     vol.Location,
				SamplingRate: vol.SamplingRate,
			}

			opts.Masks = append(opts.Masks, mask)
		}
	}

	fsc_path := params.StringValue(values, "export_fsc")

	if fsc_path != "" {

		curve, err := loadFSC(fsc_path)

		if err != nil {
			log.Fatal(err)
		}

		opts.FSCs = fsc.NewSetOfFSCs(curve)
	}

	struct_path := params.StringValue(values, "export_atom_struct")

	if struct_path != "" {
		opts.Structure = &emobj.AtomStruct{
			FileName: struct_path,
		}
	}

	d, err := deposit.NewDeposition(opts)

	if err != nil {
		log.Fatal(err)
	}

	summary, err := d.Run(ctx)

	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(summary)
}

func loadVolume(path string, sampling float64) (*emobj.Volume, error) {

	vol := &emobj.Volume{
		Location:     path,
		SamplingRate: sampling,
	}

	if vol.SamplingRate > 0 {
		return vol, nil
	}

	fh, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	hdr, err := mrc.ReadHeader(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read header for %s, %w", path, err)
	}

	vol.SamplingRate = hdr.VoxelSize()

	if vol.SamplingRate <= 0 {
		return nil, fmt.Errorf("No voxel size in %s header, use -sampling-rate", path)
	}

	return vol, nil
}

// loadFSC reads a two-column whitespace-separated text file of resolution
// (1/A) and correlation values.
func loadFSC(path string) (*fsc.FSC, error) {

	fh, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	x := make([]float64, 0)
	y := make([]float64, 0)

	scanner := bufio.NewScanner(fh)

	for scanner.Scan() {

		ln := strings.TrimSpace(scanner.Text())

		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}

		fields := strings.Fields(ln)

		if len(fields) < 2 {
			return nil, fmt.Errorf("Invalid FSC line '%s' in %s", ln, path)
		}

		fx, err := strconv.ParseFloat(fields[0], 64)

		if err != nil {
			return nil, fmt.Errorf("Invalid FSC value '%s' in %s, %w", fields[0], path, err)
		}

		fy, err := strconv.ParseFloat(fields[1], 64)

		if err != nil {
			return nil, fmt.Errorf("Invalid FSC value '%s' in %s, %w", fields[1], path, err)
		}

		x = append(x, fx)
		y = append(y, fy)
	}

	err = scanner.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", path, err)
	}

	return fsc.New("", x, y)
}

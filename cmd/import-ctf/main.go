package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/emkit/go-em-deposit/emobj"
	_ "github.com/emkit/go-em-deposit/importer/ctffind"
	_ "github.com/emkit/go-em-deposit/importer/eman2"
	_ "github.com/emkit/go-em-deposit/importer/gctf"
	_ "github.com/emkit/go-em-deposit/importer/scipion"
	_ "github.com/emkit/go-em-deposit/importer/xmipp"
	"github.com/emkit/go-em-deposit/operations/importctf"
	"github.com/emkit/go-em-deposit/params"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
)

func main() {

	request := flag.String("request", "", "Path to a yaml file with the import request.")
	project_db := flag.String("project-db", "", "Path to the project database the imported CTFs are stored in.")
	source_uri := flag.String("source-uri", "", "Bucket URI the CTF files are read from. Defaults to file:// at the request's files directory.")

	flag.Parse()

	ctx := context.Background()

	if *request == "" {
		log.Fatal("Missing -request")
	}

	if *project_db == "" {
		log.Fatal("Missing -project-db")
	}

	form := importctf.Form()

	values, err := params.LoadValuesFromPath(*request, form)

	if err != nil {
		log.Fatal(err)
	}

	db, err := emobj.OpenProjectDB(ctx, *project_db)

	if err != nil {
		log.Fatal(err)
	}

	defer db.Close()

	mics, err := db.LoadMicrographs(ctx)

	if err != nil {
		log.Fatal(err)
	}

	files_path := params.StringValue(values, "files_path")

	uri := *source_uri
	prefix := ""

	if uri == "" {
		uri = fmt.Sprintf("file://%s", files_path)
	} else {
		prefix = files_path
	}

	source, err := blob.OpenBucket(ctx, uri)

	if err != nil {
		log.Fatal(err)
	}

	defer source.Close()

	opts := &importctf.ImportOptions{
		Source:       source,
		FilesPath:    prefix,
		FilesPattern: params.StringValue(values, "files_pattern"),
		Format:       params.StringValue(values, "import_from"),
		Micrographs:  mics,
	}

	im, err := importctf.NewImport(opts)

	if err != nil {
		log.Fatal(err)
	}

	rsp, err := im.Run(ctx)

	if err != nil {
		log.Fatal(err)
	}

	err = db.SaveCTFs(ctx, rsp.CTFs)

	if err != nil {
		log.Fatal(err)
	}

	if rsp.Micrographs != nil {

		err = db.SaveMicrographs(ctx, rsp.Micrographs)

		if err != nil {
			log.Fatal(err)
		}
	}

	for _, ctf := range rsp.CTFs.Items() {

		enc, err := json.Marshal(ctf)

		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(string(enc))
	}
}

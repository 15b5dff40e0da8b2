package importctf

import (
	"github.com/emkit/go-em-deposit/params"
)

// Form declares the parameter schema for the CTF import protocol.
func Form() *params.Form {

	input := &params.Section{
		Label: "Import",
		Params: []*params.Param{
			{
				Name:         "input_micrographs",
				Label:        "Input micrographs",
				Kind:         params.KindPointer,
				PointerClass: "SetOfMicrographs",
				Important:    true,
				Help:         "Select the micrographs for which you want to update the CTF parameters.",
			},
			{
				Name:      "files_path",
				Label:     "Files directory",
				Kind:      params.KindPath,
				Important: true,
				Help:      "Directory with the files you want to import.",
			},
			{
				Name:    "files_pattern",
				Label:   "Pattern",
				Kind:    params.KindString,
				Default: "*",
				Help: "Pattern of the files to be imported.\n\n" +
					"The pattern can contain standard wildcards such as *, ?, etc.",
			},
			{
				Name:    "import_from",
				Label:   "Import from",
				Kind:    params.KindString,
				Default: FormatAuto,
				Help: "Select the tool that estimated the CTFs you want to import. " +
					"With 'auto' the format is detected from the file extensions.",
			},
		},
	}

	return &params.Form{
		Sections: []*params.Section{
			input,
		},
	}
}

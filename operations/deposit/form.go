package deposit

import (
	"github.com/emkit/go-em-deposit/params"
)

// Form declares the parameter schema for the export protocol.
func Form() *params.Form {

	input := &params.Section{
		Label: "Input",
		Params: []*params.Param{
			{
				Name:         "export_volume",
				Label:        "Main EM map to export",
				Kind:         params.KindPointer,
				PointerClass: "Volume",
				AllowsNull:   true,
				Help: "This EM map is mandatory for EMDB and it will be exported " +
					"using mrc format. If this map is associated to their respective " +
					"half maps, they will be exported as well.",
			},
			{
				Name:       "half_maps",
				Label:      "Associated half maps",
				Kind:       params.KindPath,
				AllowsNull: true,
				Help: "Half maps associated with the main map. They will be " +
					"exported alongside it as half_map_N.mrc.",
			},
			{
				Name:    "additional_volumes",
				Label:   "Additional maps to export?",
				Kind:    params.KindBool,
				Default: false,
				Help:    "Select YES if you want to add some more EM maps to export.",
			},
			{
				Name:         "export_additional_volumes",
				Label:        "Additional EM maps to export",
				Kind:         params.KindMultiPointer,
				PointerClass: "Volume",
				AllowsNull:   true,
				Condition:    "additional_volumes",
				Help:         "These additional EM maps will be also exported using mrc format.",
			},
			{
				Name:         "export_fsc",
				Label:        "FSC file to export",
				Kind:         params.KindPointer,
				PointerClass: "FSC, SetOfFSCs",
				AllowsNull:   true,
				Help:         "This FSCs will be exported using XML format",
			},
			{
				Name:    "masks",
				Label:   "Masks to export?",
				Kind:    params.KindBool,
				Default: false,
				Help:    "Select YES if you want to add some masks to export.",
			},
			{
				Name:         "export_masks",
				Label:        "Masks to export",
				Kind:         params.KindMultiPointer,
				PointerClass: "Mask",
				AllowsNull:   true,
				Condition:    "masks",
				Help:         "These mask will be exported using mrc format",
			},
			{
				Name:         "export_atom_struct",
				Label:        "Atomic structure to export",
				Kind:         params.KindPointer,
				PointerClass: "AtomStruct",
				AllowsNull:   true,
				Help:         "This atomic structure will be exported using mmCIF format",
			},
			{
				Name:       "export_picture",
				Label:      "Image to export",
				Kind:       params.KindPath,
				AllowsNull: true,
				Help:       "This image is mandatory for EMDB",
			},
			{
				Name:      "files_path",
				Label:     "Export to directory",
				Kind:      params.KindPath,
				Important: true,
				Help:      "Directory where the files will be generated.",
			},
		},
	}

	return &params.Form{
		Sections: []*params.Section{
			input,
		},
	}
}

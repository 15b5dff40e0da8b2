package emobj

import (
	"path/filepath"
	"strings"
)

// Micrograph describes a single micrograph image in a project.
type Micrograph struct {
	// Numeric object ID assigned by the project.
	ID int64 `json:"id"`
	// Path (or bucket key) of the micrograph image.
	FileName string `json:"filename"`
	// Optional acquisition-time label ("mic name"). Some tools write their
	// outputs against this label rather than the file name.
	MicName string `json:"mic_name,omitempty"`
}

// BaseName returns the file name of the micrograph without its directory
// or extension. This is the name CTF estimation tools usually derive their
// own output names from.
func (m *Micrograph) BaseName() string {
	return RemoveBaseExt(m.FileName)
}

// CTF holds a contrast transfer function estimate for a micrograph.
type CTF struct {
	// Defocus along the major axis, in Angstroms.
	DefocusU float64 `json:"defocus_u"`
	// Defocus along the minor axis, in Angstroms.
	DefocusV float64 `json:"defocus_v"`
	// Angle of astigmatism, in degrees.
	DefocusAngle float64 `json:"defocus_angle"`
	// Additional phase shift, in degrees.
	PhaseShift float64 `json:"phase_shift,omitempty"`
	// Cross-correlation between the fitted and observed CTF.
	FitQuality float64 `json:"fit_quality,omitempty"`
	// Spacing up to which CTF rings were fit, in Angstroms.
	Resolution float64 `json:"resolution,omitempty"`
	// Optional power-spectrum file produced by the estimation tool.
	PsdFile string `json:"psd_file,omitempty"`
	// The micrograph this estimate belongs to.
	Micrograph *Micrograph `json:"micrograph,omitempty"`
}

// Volume describes a reconstructed 3D map.
type Volume struct {
	// Path (or bucket key) of the map file.
	Location string `json:"location"`
	// Voxel size, in Angstroms.
	SamplingRate float64 `json:"sampling_rate"`
	// Locations of the two (or more) half maps used to build this map,
	// if any.
	HalfMaps []string `json:"half_maps,omitempty"`
}

// HasHalfMaps reports whether the volume carries associated half maps.
func (v *Volume) HasHalfMaps() bool {
	return len(v.HalfMaps) > 0
}

// HalfMapList returns the half map locations as a single comma-joined
// string, which is how upstream tools record them.
func (v *Volume) HalfMapList() string {
	return strings.Join(v.HalfMaps, ",")
}

// SetHalfMapList assigns half maps from a comma-joined list, discarding
// empty entries.
func (v *Volume) SetHalfMapList(list string) {

	half_maps := make([]string, 0)

	for _, p := range strings.Split(list, ",") {

		p = strings.TrimSpace(p)

		if p == "" {
			continue
		}

		half_maps = append(half_maps, p)
	}

	v.HalfMaps = half_maps
}

// Mask describes a binary or soft mask volume.
type Mask struct {
	// Path (or bucket key) of the mask file.
	Location string `json:"location"`
	// Voxel size, in Angstroms.
	SamplingRate float64 `json:"sampling_rate,omitempty"`
}

// AtomStruct describes an atomic structure file (PDB or mmCIF).
type AtomStruct struct {
	// Path (or bucket key) of the structure file.
	FileName string `json:"filename"`
}

// RemoveBaseExt strips the directory and extension from a path, returning
// just the base name.
func RemoveBaseExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

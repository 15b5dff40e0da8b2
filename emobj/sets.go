package emobj

import (
	"fmt"
)

// Acquisition holds the set-level microscope parameters shared by every
// item in a micrograph set.
type Acquisition struct {
	// Acceleration voltage, in kV.
	Voltage float64 `json:"voltage,omitempty"`
	// Spherical aberration, in mm.
	SphericalAberration float64 `json:"spherical_aberration,omitempty"`
	// Fraction of amplitude contrast.
	AmplitudeContrast float64 `json:"amplitude_contrast,omitempty"`
	// Nominal magnification.
	Magnification float64 `json:"magnification,omitempty"`
}

// SetOfMicrographs is an ordered collection of micrographs plus the
// acquisition metadata they share.
type SetOfMicrographs struct {
	Acquisition  Acquisition `json:"acquisition"`
	SamplingRate float64     `json:"sampling_rate,omitempty"`
	items        []*Micrograph
	by_id        map[int64]*Micrograph
}

// NewSetOfMicrographs returns an empty micrograph set.
func NewSetOfMicrographs() *SetOfMicrographs {

	return &SetOfMicrographs{
		items: make([]*Micrograph, 0),
		by_id: make(map[int64]*Micrograph),
	}
}

// CopyInfo copies the set-level metadata (acquisition, sampling rate) from
// other, without copying any items.
func (s *SetOfMicrographs) CopyInfo(other *SetOfMicrographs) {
	s.Acquisition = other.Acquisition
	s.SamplingRate = other.SamplingRate
}

// Append adds a micrograph to the set. Appending a second micrograph with
// the same ID is an error.
func (s *SetOfMicrographs) Append(mic *Micrograph) error {

	_, exists := s.by_id[mic.ID]

	if exists {
		return fmt.Errorf("Micrograph ID %d is already present in the set", mic.ID)
	}

	s.items = append(s.items, mic)
	s.by_id[mic.ID] = mic
	return nil
}

// Get returns the micrograph with the given ID, or nil.
func (s *SetOfMicrographs) Get(id int64) *Micrograph {
	return s.by_id[id]
}

// Len returns the number of micrographs in the set.
func (s *SetOfMicrographs) Len() int {
	return len(s.items)
}

// Items returns the micrographs in insertion order. The slice is shared;
// callers should not modify it.
func (s *SetOfMicrographs) Items() []*Micrograph {
	return s.items
}

// SetOfCTFs is an ordered collection of CTF estimates, associated with the
// micrograph set they were computed for.
type SetOfCTFs struct {
	// The micrograph set these estimates belong to.
	Micrographs *SetOfMicrographs `json:"-"`
	items       []*CTF
}

// NewSetOfCTFs returns an empty CTF set.
func NewSetOfCTFs() *SetOfCTFs {

	return &SetOfCTFs{
		items: make([]*CTF, 0),
	}
}

// SetMicrographs records the micrograph set these estimates were computed
// against.
func (s *SetOfCTFs) SetMicrographs(mics *SetOfMicrographs) {
	s.Micrographs = mics
}

// Append adds a CTF estimate to the set.
func (s *SetOfCTFs) Append(ctf *CTF) {
	s.items = append(s.items, ctf)
}

// Len returns the number of estimates in the set.
func (s *SetOfCTFs) Len() int {
	return len(s.items)
}

// Items returns the estimates in insertion order. The slice is shared;
// callers should not modify it.
func (s *SetOfCTFs) Items() []*CTF {
	return s.items
}

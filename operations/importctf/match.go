package importctf

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/emkit/go-em-deposit/importer"
)

// matcher pairs candidate files with micrographs. Micrograph base names
// are not guaranteed to be unique prefixes of one another, so a name
// contained in another, longer name is treated as conflicted and only
// accepts files that match it alone.
type matcher struct {
	files  []string
	mics   *emobj.SetOfMicrographs
	ci     importer.Importer
	logger *slog.Logger
}

// findCTF returns the CTF for mic, or nil when no candidate file could be
// matched or parsed. Failures are warnings, not errors; the caller drops
// the micrograph instead.
func (m *matcher) findCTF(ctx context.Context, mic *emobj.Micrograph) *emobj.CTF {

	mic_base := mic.BaseName()

	conflicts := m.conflictsFor(mic_base)

	if len(conflicts) > 0 {

		m.logger.Warn("Micrograph base name is contained in other micrograph names. Only files matching it exclusively will be considered.", "micrograph", mic_base, "conflicts", strings.Join(conflicts, ", "))

		for _, f := range m.goodMatches(mic_base, conflicts) {

			ctf, err := m.ci.ImportCTF(ctx, mic, f)

			if err != nil {
				m.logger.Warn("Can't import ctf for micrograph from file", "micrograph", mic_base, "file", f, "error", err)
				continue
			}

			m.logger.Warn("Assigned file to micrograph", "file", f, "micrograph", mic_base)
			return ctf
		}

		return nil
	}

	for _, f := range m.files {

		if !m.matches(f, mic, mic_base) {
			continue
		}

		ctf, err := m.ci.ImportCTF(ctx, mic, f)

		if err != nil {
			m.logger.Warn("Can't import ctf for micrograph from file", "micrograph", mic_base, "file", f, "error", err)
			return nil
		}

		return ctf
	}

	return nil
}

// conflictsFor returns the other micrograph base names mic_base is a
// substring of.
func (m *matcher) conflictsFor(mic_base string) []string {

	conflicts := make([]string, 0)

	for _, other := range m.mics.Items() {

		other_base := other.BaseName()

		if other_base == mic_base {
			continue
		}

		if strings.Contains(other_base, mic_base) {
			conflicts = append(conflicts, other_base)
		}
	}

	return conflicts
}

// goodMatches returns the files that contain mic_base but none of the
// conflicting names.
func (m *matcher) goodMatches(mic_base string, conflicts []string) []string {

	good := make([]string, 0)

	for _, f := range m.files {

		if !strings.Contains(f, mic_base) {
			continue
		}

		conflicted := false

		for _, c := range conflicts {

			if strings.Contains(f, c) {
				conflicted = true
				break
			}
		}

		if !conflicted {
			good = append(good, f)
		}
	}

	return good
}

func (m *matcher) matches(f string, mic *emobj.Micrograph, mic_base string) bool {

	if id, ok := fileID(f); ok && id == mic.ID {
		return true
	}

	if strings.Contains(f, mic_base) {
		return true
	}

	if mic.MicName != "" && strings.Contains(f, emobj.RemoveBaseExt(mic.MicName)) {
		return true
	}

	return false
}

// fileID extracts a trailing integer from a file's base name, for runs
// where the producing tool numbered its outputs instead of reusing the
// micrograph names.
func fileID(f string) (int64, bool) {

	base := emobj.RemoveBaseExt(filepath.Base(f))

	end := len(base)
	start := end

	for start > 0 && base[start-1] >= '0' && base[start-1] <= '9' {
		start--
	}

	if start == end {
		return 0, false
	}

	id, err := strconv.ParseInt(base[start:end], 10, 64)

	if err != nil {
		return 0, false
	}

	return id, true
}

package mrc

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// File is an MRC volume opened from the local filesystem. The data section
// is memory-mapped rather than copied; deposited maps are routinely
// multi-gigabyte and only pass through this package on their way to a
// target bucket.
type File struct {
	Header *Header

	fh   *os.File
	mm   mmap.MMap
	data []byte
}

// OpenFile maps an MRC file at path. The caller must Close it.
func OpenFile(path string) (*File, error) {

	fh, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s, %w", path, err)
	}

	mm, err := mmap.Map(fh, mmap.RDONLY, 0)

	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("Failed to mmap %s, %w", path, err)
	}

	hdr, err := DecodeHeader(mm)

	if err != nil {
		mm.Unmap()
		fh.Close()
		return nil, fmt.Errorf("Failed to decode header for %s, %w", path, err)
	}

	data_off := HeaderSize + int(hdr.NSymBt)

	if len(mm) < data_off {
		mm.Unmap()
		fh.Close()
		return nil, fmt.Errorf("Truncated MRC file %s", path)
	}

	f := &File{
		Header: hdr,
		fh:     fh,
		mm:     mm,
		data:   mm[data_off:],
	}

	return f, nil
}

// Data decodes the mapped data section into float32 samples.
func (f *File) Data() ([]float32, error) {
	return DecodeData(f.Header, f.data)
}

// Close unmaps the data and closes the file.
func (f *File) Close() error {

	err := f.mm.Unmap()

	if err != nil {
		f.fh.Close()
		return fmt.Errorf("Failed to unmap, %w", err)
	}

	return f.fh.Close()
}

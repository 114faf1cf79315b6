package fat12

import (
	"fmt"
	"io"

	"github.com/aligator/fat12/checkpoint"
)

// Store performs bounds-checked sector reads on the volume image.
// Every call seeks and reads again, there is no caching.
//
// Store does no locking. Callers sharing one Store between goroutines have to
// serialize the calls.
type Store struct {
	reader     io.ReadSeeker
	sectorSize uint16
	size       int64
}

// NewStore wraps the given reader. The size of the image is determined once by
// seeking to its end.
func NewStore(reader io.ReadSeeker, sectorSize uint16) (*Store, error) {
	size, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	return &Store{
		reader:     reader,
		sectorSize: sectorSize,
		size:       size,
	}, nil
}

// Size returns the length of the image in bytes.
func (s *Store) Size() int64 {
	return s.size
}

// SectorSize returns the number of bytes per sector used to calculate offsets.
func (s *Store) SectorSize() uint16 {
	return s.sectorSize
}

// ReadSectorRange reads count sectors starting at sector first.
//
// Requesting zero sectors is valid and returns an empty slice.
// If the start lies behind the end of the image ErrOutOfRange is returned.
// If the image ends before count sectors could be read, only the available
// bytes are returned, without error. The length of the result is the amount
// of bytes actually read.
func (s *Store) ReadSectorRange(first, count uint32) ([]byte, error) {
	if count == 0 {
		return []byte{}, nil
	}

	offset := int64(first) * int64(s.sectorSize)
	if offset > s.size {
		return nil, checkpoint.Wrap(ErrOutOfRange, fmt.Errorf("sector %v starts at byte %v, but the image has only %v bytes", first, offset, s.size))
	}

	length := int64(count) * int64(s.sectorSize)
	if offset+length > s.size {
		length = s.size - offset
	}

	if _, err := s.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, checkpoint.From(err)
	}

	buffer := make([]byte, length)
	n, err := io.ReadFull(s.reader, buffer)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, checkpoint.From(err)
	}

	return buffer[:n], nil
}

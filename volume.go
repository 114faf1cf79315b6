package fat12

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aligator/fat12/checkpoint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// bootSectorReadSize is used to read the boot sector before the real sector size is known.
// The fields needed are always inside of the first 512 bytes.
const bootSectorReadSize = 512

// Option configures how a volume is opened.
type Option func(o *options)

type options struct {
	log        logrus.FieldLogger
	skipChecks bool
}

// WithLogger sets the logger used by the volume. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// SkipChecks disables the validation of the boot sector against the FAT specification.
// This may allow opening not perfectly standard volumes. Use with caution!
// Values which would make the geometry impossible to calculate are still rejected.
func SkipChecks() Option {
	return func(o *options) {
		o.skipChecks = true
	}
}

// Volume is an opened FAT12 volume. It holds the backing store, the geometry
// and in-memory copies of the FAT and the root directory.
//
// A Volume is read-only for its whole lifetime. The FAT and root directory copies
// may be shared between goroutines, but the backing store is not synchronized:
// callers must not use one Volume from several goroutines at the same time.
type Volume struct {
	store      *Store
	closer     io.Closer
	bootSector BootSector
	geometry   Geometry
	table      *Table
	root       []byte
	log        logrus.FieldLogger
	closed     bool
}

// Open reads the boot sector, the FAT and the root directory from reader.
// It fails with ErrInvalidVolume if the image is empty, the boot sector is invalid
// or the image is shorter than the FAT or root directory regions.
func Open(reader io.ReadSeeker, opts ...Option) (*Volume, error) {
	o := options{
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := NewStore(reader, bootSectorReadSize)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidVolume)
	}

	if store.Size() == 0 {
		return nil, checkpoint.Wrap(ErrInvalidVolume, fmt.Errorf("the image is empty"))
	}

	first, err := store.ReadSectorRange(0, 1)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidVolume)
	}

	bs, err := ParseBootSector(first)
	if err != nil {
		return nil, err
	}

	if o.skipChecks {
		err = bs.checkRequired()
	} else {
		err = bs.check()
	}
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidVolume)
	}

	geometry := NewGeometry(bs)
	store.sectorSize = geometry.SectorSize

	v := &Volume{
		store:      store,
		bootSector: bs,
		geometry:   geometry,
		log:        o.log,
	}

	fat, err := v.readRegion("FAT", geometry.FATSectorOffset, geometry.FATSectorsPerCopy)
	if err != nil {
		return nil, err
	}
	v.table = NewTable(fat)

	v.root, err = v.readRegion("root directory", geometry.RootDirSectorOffset, geometry.RootDirSectorCount)
	if err != nil {
		return nil, err
	}

	v.log.WithFields(logrus.Fields{
		"sectorSize":      geometry.SectorSize,
		"clusterSize":     geometry.ClusterSize,
		"fatOffset":       geometry.FATSectorOffset,
		"fatSectors":      geometry.FATSectorsPerCopy,
		"fatCopies":       geometry.FATCopies,
		"rootOffset":      geometry.RootDirSectorOffset,
		"rootEntries":     geometry.RootDirEntryCount,
		"clusterHeap":     geometry.ClusterHeapSectorOffset,
		"fatEntries":      v.table.Len(),
		"imageSize":       store.Size(),
		"skippingChecks":  o.skipChecks,
		"totalSectors":    geometry.TotalSectors,
		"firstDataSector": geometry.FirstDataSector(),
	}).Debug("opened FAT12 volume")

	return v, nil
}

// OpenFile opens the image name from the given afero.Fs.
// The returned volume owns the file and closes it on Close.
func OpenFile(fs afero.Fs, name string, opts ...Option) (*Volume, error) {
	file, err := fs.Open(name)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	v, err := Open(file, opts...)
	if err != nil {
		file.Close()
		return nil, err
	}

	v.closer = file
	return v, nil
}

// readRegion reads a region which has to be available completely.
func (v *Volume) readRegion(name string, first, count uint32) ([]byte, error) {
	data, err := v.store.ReadSectorRange(first, count)
	if err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("%w: could not read the %s", ErrInvalidVolume, name))
	}

	want := int(count) * int(v.geometry.SectorSize)
	if len(data) < want {
		return nil, checkpoint.Wrap(ErrInvalidVolume, fmt.Errorf("the %s needs %v bytes but only %v are available", name, want, len(data)))
	}

	return data, nil
}

// Close releases the backing store if the volume owns it.
// Afterwards every operation which reads from the image fails with os.ErrClosed.
// Label, Usage and the geometry stay available as they only use the in-memory copies.
func (v *Volume) Close() error {
	if v.closed {
		return checkpoint.From(os.ErrClosed)
	}
	v.closed = true

	if v.closer == nil {
		return nil
	}

	err := v.closer.Close()
	v.closer = nil
	return checkpoint.From(err)
}

func (v *Volume) checkOpen() error {
	if v.closed {
		return checkpoint.From(os.ErrClosed)
	}
	return nil
}

// Geometry returns the layout of the volume.
func (v *Volume) Geometry() Geometry {
	return v.geometry
}

// BootSector returns the parsed boot sector.
func (v *Volume) BootSector() BootSector {
	return v.bootSector
}

// Table returns the in-memory FAT.
func (v *Volume) Table() *Table {
	return v.table
}

// Store returns the backing store of the volume.
func (v *Volume) Store() *Store {
	return v.store
}

// Label returns the volume label. The label entry of the root directory is
// preferred over the label of the boot sector.
func (v *Volume) Label() string {
	for offset := 0; offset+DirEntrySize <= len(v.root); offset += DirEntrySize {
		entry, err := DecodeEntry(v.root[offset : offset+DirEntrySize])
		if err != nil || entry.Kind != KindSkip {
			continue
		}

		if entry.Attributes&AttrVolumeLabel != 0 && entry.Attributes&0x3F != AttrLongName {
			return strings.TrimRight(string(entry.RawName[:]), " ")
		}
	}

	return v.bootSector.VolumeLabel
}

// Usage contains cluster statistics of a volume.
type Usage struct {
	TotalClusters int
	FreeClusters  int
	UsedClusters  int
	BadClusters   int
	// Chains is the number of clusters which end a chain, so it counts the
	// non-empty files and directories outside of the root directory.
	Chains int
}

// Usage counts the free, used and bad data clusters.
func (v *Volume) Usage() Usage {
	last := v.table.Len()
	if clusters := int(v.geometry.DataClusters()); clusters > 0 && clusters+2 < last {
		last = clusters + 2
	}

	var usage Usage
	for cluster := 2; cluster < last; cluster++ {
		entry, err := v.table.Entry(uint16(cluster))
		if err != nil {
			break
		}

		usage.TotalClusters++
		switch {
		case entry.IsFree():
			usage.FreeClusters++
		case entry.IsBad():
			usage.BadClusters++
		default:
			usage.UsedClusters++
			if entry.IsEndOfChain() {
				usage.Chains++
			}
		}
	}

	return usage
}

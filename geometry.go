package fat12

// Geometry describes where the regions of a volume are located.
// It is derived once from the boot sector and never changes afterwards.
// All offsets are counted in sectors from the start of the image.
type Geometry struct {
	SectorSize        uint16
	ClusterSize       uint8
	ReservedSectors   uint16
	HiddenSectors     uint16
	FATSectorOffset   uint32
	FATSectorsPerCopy uint32
	FATCopies         uint8

	RootDirSectorOffset uint32
	RootDirEntryCount   uint16
	RootDirSectorCount  uint32

	// ClusterHeapSectorOffset is chosen so that cluster 2, the first data cluster,
	// maps to the first sector after the root directory. It may be negative for
	// big clusters on small volumes.
	ClusterHeapSectorOffset int64

	TotalSectors uint32
}

// NewGeometry derives the region offsets from bs.
// bs must have passed checkRequired.
func NewGeometry(bs BootSector) Geometry {
	g := Geometry{
		SectorSize:        bs.BytesPerSector,
		ClusterSize:       bs.SectorsPerCluster,
		ReservedSectors:   bs.ReservedSectors,
		HiddenSectors:     bs.HiddenSectors,
		FATSectorOffset:   uint32(bs.ReservedSectors),
		FATSectorsPerCopy: uint32(bs.SectorsPerFAT),
		FATCopies:         bs.NumFATs,
		RootDirEntryCount: bs.RootEntryCount,
		TotalSectors:      bs.TotalSectors,
	}

	g.RootDirSectorOffset = g.FATSectorOffset + g.FATSectorsPerCopy*uint32(g.FATCopies)

	rootBytes := uint32(g.RootDirEntryCount) * DirEntrySize
	g.RootDirSectorCount = (rootBytes + uint32(g.SectorSize) - 1) / uint32(g.SectorSize)

	g.ClusterHeapSectorOffset = int64(g.RootDirSectorOffset) + int64(g.RootDirSectorCount) - 2*int64(g.ClusterSize)

	return g
}

// BytesPerCluster returns the size of one cluster in bytes.
func (g Geometry) BytesPerCluster() uint32 {
	return uint32(g.SectorSize) * uint32(g.ClusterSize)
}

// FirstDataSector returns the first sector after the root directory.
func (g Geometry) FirstDataSector() uint32 {
	return g.RootDirSectorOffset + g.RootDirSectorCount
}

// ClusterSector returns the first sector of the given cluster.
func (g Geometry) ClusterSector(cluster uint16) uint32 {
	return uint32(g.ClusterHeapSectorOffset + int64(cluster)*int64(g.ClusterSize))
}

// DataClusters returns how many data clusters the volume has according to its
// total sector count. It is 0 if the boot sector does not specify the total size.
func (g Geometry) DataClusters() uint32 {
	first := g.FirstDataSector()
	if g.TotalSectors <= first {
		return 0
	}
	return (g.TotalSectors - first) / uint32(g.ClusterSize)
}

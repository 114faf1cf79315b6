package fat12

import (
	"fmt"

	"github.com/aligator/fat12/checkpoint"
)

// ClusterEntry is the 12-bit value stored in the FAT for one cluster.
type ClusterEntry uint16

// Value returns the entry with only the 12 used bits.
func (e ClusterEntry) Value() uint16 {
	return uint16(e) & 0x0FFF
}

func (e ClusterEntry) String() string {
	return fmt.Sprintf("0x%03X", e.Value())
}

// IsFree reports an unused cluster.
func (e ClusterEntry) IsFree() bool {
	return e.Value() == 0x000
}

// IsReserved reports the values 0x001 and 0xFF0 - 0xFF6 which must not appear in a chain.
func (e ClusterEntry) IsReserved() bool {
	v := e.Value()
	return v == 0x001 || (v >= 0xFF0 && v <= 0xFF6)
}

// IsNextCluster reports if the entry points to the next cluster of a chain.
func (e ClusterEntry) IsNextCluster() bool {
	v := e.Value()
	return v >= 0x002 && v <= 0xFEF
}

// IsBad reports a cluster marked as defective.
func (e ClusterEntry) IsBad() bool {
	return e.Value() == 0xFF7
}

// IsEndOfChain reports the last cluster of a chain.
func (e ClusterEntry) IsEndOfChain() bool {
	return e.Value() >= 0xFF8
}

// Table is the in-memory copy of the first FAT of a volume.
// It is never modified after loading and can be shared between goroutines.
type Table struct {
	data []byte
}

// NewTable uses data as the raw FAT region.
func NewTable(data []byte) *Table {
	return &Table{data: data}
}

// Len returns the number of entries the table holds, including the two reserved ones.
// Two entries are packed into three bytes.
func (t *Table) Len() int {
	return len(t.data) * 2 / 3
}

// NextCluster returns the FAT entry of cluster, which is the number of the next
// cluster in the chain, 0 for a free cluster or a value >= 0xFF8 for the end of the chain.
// It fails with ErrInvalidCluster if the cluster is not covered by the table.
func (t *Table) NextCluster(cluster uint16) (uint16, error) {
	if int(cluster) >= t.Len() {
		return 0, checkpoint.Wrap(ErrInvalidCluster, fmt.Errorf("cluster %v is outside of the FAT with %v entries", cluster, t.Len()))
	}

	// Even clusters use the low 12 bits and odd clusters the high 12 bits of the
	// 3 bytes which hold both entries.
	if cluster%2 == 0 {
		pos := int(cluster) * 3 / 2
		return uint16(t.data[pos]) | uint16(t.data[pos+1]&0x0F)<<8, nil
	}

	pos := (int(cluster) - 1) * 3 / 2
	return uint16(t.data[pos+1]>>4) | uint16(t.data[pos+2])<<4, nil
}

// Entry is like NextCluster but returns the value as ClusterEntry.
func (t *Table) Entry(cluster uint16) (ClusterEntry, error) {
	next, err := t.NextCluster(cluster)
	return ClusterEntry(next), err
}

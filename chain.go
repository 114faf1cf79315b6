package fat12

import (
	"fmt"
	"io"
	"syscall"

	"github.com/aligator/fat12/checkpoint"
	"github.com/boljen/go-bitmap"
	"github.com/sirupsen/logrus"
)

// chainWalker follows a cluster chain through the FAT.
// Every cluster may only be visited once, which bounds the walk by the size
// of the table even if the FAT contains a loop.
type chainWalker struct {
	table   *Table
	log     logrus.FieldLogger
	visited bitmap.Bitmap

	first   uint16
	current uint16
	started bool
	done    bool
}

func (v *Volume) walkChain(first uint16) *chainWalker {
	return &chainWalker{
		table:   v.table,
		log:     v.log,
		visited: bitmap.New(v.table.Len()),
		first:   first,
	}
}

// Next returns the next cluster of the chain, starting with the first one.
// It returns io.EOF after the cluster marked as end of chain.
func (w *chainWalker) Next() (uint16, error) {
	if w.done {
		return 0, io.EOF
	}

	cluster := w.first
	if w.started {
		entry, err := w.table.Entry(w.current)
		if err != nil {
			return 0, w.corrupt(err)
		}

		if entry.IsEndOfChain() {
			w.done = true
			return 0, io.EOF
		}

		if !entry.IsNextCluster() {
			return 0, w.corrupt(fmt.Errorf("cluster %v links to the invalid value 0x%03X", w.current, entry.Value()))
		}

		cluster = entry.Value()
	}
	w.started = true

	if cluster < 2 || int(cluster) >= w.table.Len() {
		return 0, w.corrupt(checkpoint.Wrap(ErrInvalidCluster, fmt.Errorf("cluster %v is not a data cluster of a FAT with %v entries", cluster, w.table.Len())))
	}

	if w.visited.Get(int(cluster)) {
		return 0, w.corrupt(fmt.Errorf("cluster %v is part of the chain twice", cluster))
	}
	w.visited.Set(int(cluster), true)

	w.current = cluster
	return cluster, nil
}

func (w *chainWalker) corrupt(err error) error {
	w.done = true
	w.log.WithFields(logrus.Fields{
		"firstCluster": w.first,
		"cluster":      w.current,
	}).WithError(err).Warn("corrupt cluster chain")

	return checkpoint.Wrap(err, ErrCorruptVolume)
}

// ReadCluster reads the content of one data cluster.
// The result is shorter than a cluster if the image ends inside of it.
func (v *Volume) ReadCluster(cluster uint16) ([]byte, error) {
	if err := v.checkOpen(); err != nil {
		return nil, err
	}
	if cluster < 2 {
		return nil, checkpoint.Wrap(ErrInvalidCluster, fmt.Errorf("cluster %v is not a data cluster", cluster))
	}

	return v.store.ReadSectorRange(v.geometry.ClusterSector(cluster), uint32(v.geometry.ClusterSize))
}

// Chain returns all clusters of the chain starting at first.
// It fails with ErrCorruptVolume if the chain is broken or contains a loop.
func (v *Volume) Chain(first uint16) ([]uint16, error) {
	if err := v.checkOpen(); err != nil {
		return nil, err
	}

	w := v.walkChain(first)

	var chain []uint16
	for {
		cluster, err := w.Next()
		if err == io.EOF {
			return chain, nil
		}
		if err != nil {
			return chain, err
		}

		chain = append(chain, cluster)
	}
}

// ReadFileAt reads up to size bytes of the file described by entry, beginning at offset.
// The data is clipped to the size of the file. If the end of the file is reached,
// the data is returned together with io.EOF.
func (v *Volume) ReadFileAt(entry DirEntry, offset int64, size int64) ([]byte, error) {
	if entry.IsDirectory {
		return nil, checkpoint.Wrap(syscall.EISDIR, ErrReadFile)
	}
	if err := v.checkOpen(); err != nil {
		return nil, err
	}

	if offset < 0 || size < 0 {
		return nil, checkpoint.Wrap(syscall.EINVAL, fmt.Errorf("%w: offset %v, size %v", ErrReadFile, offset, size))
	}

	fileSize := int64(entry.Size)
	if offset >= fileSize {
		return nil, io.EOF
	}

	end := offset + size
	reachedEnd := false
	if end >= fileSize {
		end = fileSize
		reachedEnd = true
	}

	if entry.FirstCluster == 0 {
		return nil, checkpoint.Wrap(ErrCorruptVolume, fmt.Errorf("file %v has %v bytes but no clusters", entry.Name, fileSize))
	}

	bytesPerCluster := int64(v.geometry.BytesPerCluster())
	result := make([]byte, 0, end-offset)

	w := v.walkChain(entry.FirstCluster)
	for clusterStart := int64(0); clusterStart < end; clusterStart += bytesPerCluster {
		cluster, err := w.Next()
		if err == io.EOF {
			return result, checkpoint.Wrap(ErrCorruptVolume, fmt.Errorf("the chain of %v ends before its size of %v bytes", entry.Name, fileSize))
		}
		if err != nil {
			return result, err
		}

		// Clusters before the offset are only needed to follow the chain.
		if clusterStart+bytesPerCluster <= offset {
			continue
		}

		data, err := v.ReadCluster(cluster)
		if err != nil {
			return result, err
		}

		from := int64(0)
		if offset > clusterStart {
			from = offset - clusterStart
		}
		to := bytesPerCluster
		if end < clusterStart+bytesPerCluster {
			to = end - clusterStart
		}

		if to > int64(len(data)) {
			if from < int64(len(data)) {
				result = append(result, data[from:]...)
			}
			return result, checkpoint.Wrap(ErrReadFile, fmt.Errorf("the image ends inside of cluster %v: %w", cluster, io.ErrUnexpectedEOF))
		}

		result = append(result, data[from:to]...)
	}

	if reachedEnd {
		return result, io.EOF
	}
	return result, nil
}

// Package fusefs serves a FAT12 volume read-only through FUSE.
package fusefs

import (
	"context"
	"io"
	"os"
	"path"
	"syscall"

	"github.com/aligator/fat12"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// rootInode is the inode number of the root directory. All other entries use
// their first cluster + 1, which is always bigger as data clusters start at 2.
const rootInode = 1

// maxNameLen is the length of an 8.3 name including the dot.
const maxNameLen = 12

// Node is a file or directory of the mounted volume.
type Node struct {
	fs.Inode

	fsys  *fat12.Fs
	log   logrus.FieldLogger
	path  string
	entry fat12.DirEntry
}

var (
	_ = (fs.NodeLookuper)((*Node)(nil))
	_ = (fs.NodeReaddirer)((*Node)(nil))
	_ = (fs.NodeGetattrer)((*Node)(nil))
	_ = (fs.NodeOpener)((*Node)(nil))
	_ = (fs.NodeStatfser)((*Node)(nil))
)

// NewRoot returns the node of the root directory of fsys.
func NewRoot(fsys *fat12.Fs, log logrus.FieldLogger) *Node {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Node{
		fsys:  fsys,
		log:   log,
		path:  "/",
		entry: fat12.RootEntry(),
	}
}

func (n *Node) child(name string, entry fat12.DirEntry) *Node {
	return &Node{
		fsys:  n.fsys,
		log:   n.log,
		path:  path.Join(n.path, name),
		entry: entry,
	}
}

// inode returns a stable inode number for the entry.
// Empty files have no cluster, 0 lets go-fuse generate a number for them.
func inode(entry fat12.DirEntry) uint64 {
	if entry.IsRoot() {
		return rootInode
	}
	if entry.FirstCluster == 0 {
		return 0
	}
	return uint64(entry.FirstCluster) + 1
}

func mode(entry fat12.DirEntry) uint32 {
	if entry.IsDirectory {
		return fuse.S_IFDIR
	}
	return fuse.S_IFREG
}

func (n *Node) fillAttr(out *fuse.Attr) {
	info := n.entry.FileInfo()

	out.Ino = inode(n.entry)
	out.Mode = mode(n.entry) | uint32(info.Mode().Perm())
	out.Size = uint64(info.Size())
	out.Blocks = (out.Size + 511) / 512
	out.Blksize = n.fsys.Volume().Geometry().BytesPerCluster()
	out.Nlink = 1

	if modTime := info.ModTime(); !modTime.IsZero() {
		out.SetTimes(&modTime, &modTime, &modTime)
	}
}

func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	n.fillAttr(&out.Attr)
	return 0
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childPath := path.Join(n.path, name)
	info, err := n.fsys.Stat(childPath)
	if err != nil {
		return nil, n.errno("lookup", childPath, err)
	}

	entry, ok := info.Sys().(fat12.DirEntry)
	if !ok {
		return nil, syscall.EIO
	}

	child := n.child(name, entry)
	child.fillAttr(&out.Attr)

	// ".." of a directory inside of the root. The inode of the root already exists.
	if entry.IsRoot() {
		return n.Root(), 0
	}

	return n.NewInode(ctx, child, fs.StableAttr{
		Mode: mode(entry),
		Ino:  inode(entry),
	}), 0
}

func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	dir, err := n.fsys.Open(n.path)
	if err != nil {
		return nil, n.errno("readdir", n.path, err)
	}
	defer dir.Close()

	infos, err := dir.Readdir(-1)
	if err != nil {
		return nil, n.errno("readdir", n.path, err)
	}

	list := make([]fuse.DirEntry, 0, len(infos))
	for _, info := range infos {
		entry, ok := info.Sys().(fat12.DirEntry)
		if !ok {
			continue
		}

		list = append(list, fuse.DirEntry{
			Name: entry.Name,
			Mode: mode(entry),
			Ino:  inode(entry),
		})
	}

	return fs.NewListDirStream(list), 0
}

// Open opens a file for reading. Any flag which allows writing fails with EROFS.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_APPEND|syscall.O_TRUNC|syscall.O_CREAT) != 0 {
		return nil, 0, syscall.EROFS
	}

	file, err := n.fsys.OpenFile(n.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, 0, n.errno("open", n.path, err)
	}

	// The content never changes while mounted.
	return &fileHandle{node: n, file: file}, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *Node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	usage := n.fsys.Usage()
	geometry := n.fsys.Volume().Geometry()

	out.Bsize = geometry.BytesPerCluster()
	out.Frsize = out.Bsize
	out.Blocks = uint64(usage.TotalClusters)
	out.Bfree = uint64(usage.FreeClusters)
	out.Bavail = uint64(usage.FreeClusters)
	out.NameLen = maxNameLen
	return 0
}

func (n *Node) errno(op, path string, err error) syscall.Errno {
	errno := toErrno(err)

	log := n.log.WithFields(logrus.Fields{
		"op":    op,
		"path":  path,
		"errno": errno,
	}).WithError(err)
	if errno == syscall.EIO {
		log.Warn("fat12 operation failed")
	} else {
		log.Debug("fat12 operation failed")
	}

	return errno
}

// fileHandle is an opened file.
type fileHandle struct {
	node *Node
	file afero.File
}

var (
	_ = (fs.FileReader)((*fileHandle)(nil))
	_ = (fs.FileReleaser)((*fileHandle)(nil))
)

func (h *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := h.file.ReadAt(dest, off)
	if err != nil && err != io.EOF {
		return nil, h.node.errno("read", h.node.path, err)
	}

	return fuse.ReadResultData(dest[:n]), 0
}

func (h *fileHandle) Release(ctx context.Context) syscall.Errno {
	if err := h.file.Close(); err != nil {
		return h.node.errno("release", h.node.path, err)
	}
	return 0
}

package fat12test

import (
	"time"
)

// SampleModTime is the timestamp of all entries of the sample image.
var SampleModTime = time.Date(2021, 3, 14, 12, 30, 10, 0, time.UTC)

// Contents of the files of the sample image.
var (
	FileContent   = []byte("Hello World!")
	ReadmeContent = []byte("read me please\n")
	SpacedContent = []byte("abc")
	AContent      = []byte("aaaa")
	BContent      = []byte("bbbb")
	DeepContent   = []byte("deep file")
	BigContent    = bigContent(1100)
)

func bigContent(size int) []byte {
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i % 251)
	}
	return content
}

func file(name string, cluster uint16, size int) Entry {
	return Entry{
		Name:         name,
		Attr:         attrArchive,
		FirstCluster: cluster,
		Size:         uint32(size),
		Date:         PackDate(SampleModTime),
		Time:         PackTime(SampleModTime),
	}
}

func dir(name string, cluster uint16) Entry {
	return Entry{
		Name:         name,
		Attr:         attrDirectory,
		FirstCluster: cluster,
		Date:         PackDate(SampleModTime),
		Time:         PackTime(SampleModTime),
	}
}

// Sample builds an image with this content:
//  /FILE.TXT            cluster 5
//  /README              cluster 6, no extension, so it is named "README."
//  /MY FILE.TXT         cluster 8, stored as "MY FILE TXT"
//  /SUBDIR/             clusters 10 and 11, the chain ends with 0xFF8
//  /SUBDIR/A.TXT        cluster 12
//  /SUBDIR/B.TXT        cluster 15, in the second cluster of SUBDIR
//  /SUBDIR/NESTED/      cluster 13
//  /SUBDIR/NESTED/DEEP.TXT cluster 14
//  /BIG.BIN             clusters 20, 21 and 22
//  /EMPTY.TXT           no cluster
// The root directory additionally contains a volume label, a long file name
// part and a deleted entry. The root slots 9 to 15 are free.
func Sample() *Image {
	img := New(DefaultOptions())

	img.AddRootEntry(0, Entry{Raw: "SAMPLEDISK", Attr: attrVolumeLabel})
	img.AddRootEntry(1, Entry{Raw: "Ab\x00c\x00d\x00e\x00f\x00", Attr: attrLongName})
	img.AddRootEntry(2, file("FILE.TXT", 5, len(FileContent)))
	img.AddRootEntry(3, Entry{Name: "OLD.TXT", Attr: attrArchive, FirstCluster: 7, Size: 5, Deleted: true})
	img.AddRootEntry(4, file("README", 6, len(ReadmeContent)))
	img.AddRootEntry(5, dir("SUBDIR", 10))
	img.AddRootEntry(6, file("BIG.BIN", 20, len(BigContent)))
	img.AddRootEntry(7, file("EMPTY.TXT", 0, 0))
	img.AddRootEntry(8, Entry{Raw: "MY FILE TXT", Attr: attrArchive, FirstCluster: 8, Size: uint32(len(SpacedContent))})

	img.WriteChain(FileContent, 5)
	img.WriteChain(ReadmeContent, 6)
	img.WriteChain(SpacedContent, 8)
	img.WriteChain(BigContent, 20, 21, 22)

	img.AddEntry(10, 0, dir(".", 10))
	img.AddEntry(10, 1, dir("..", 0))
	img.AddEntry(10, 2, file("A.TXT", 12, len(AContent)))
	img.AddEntry(11, 0, file("B.TXT", 15, len(BContent)))
	img.AddEntry(11, 1, dir("NESTED", 13))
	img.SetFAT(10, 11)
	img.SetFAT(11, 0xFF8)

	img.WriteChain(AContent, 12)
	img.WriteChain(BContent, 15)

	img.AddEntry(13, 0, dir(".", 13))
	img.AddEntry(13, 1, dir("..", 10))
	img.AddEntry(13, 2, file("DEEP.TXT", 14, len(DeepContent)))
	img.Link(13)
	img.WriteChain(DeepContent, 14)

	return img
}

// Corrupt builds the Sample image with additional broken entries in the root directory:
//  /LOOP.BIN     clusters 30 and 31 which link to each other
//  /BROKEN.BIN   cluster 40 links to the free cluster 41
//  /SHORT.BIN    the chain has one cluster but the size needs more
//  /NOCLUS.BIN   has a size but no cluster
//  /LOOPDIR/     cluster 50 links to itself
//  /OUTSIDE.BIN  starts at a cluster behind the FAT
func Corrupt() *Image {
	img := Sample()

	img.AddRootEntry(9, file("LOOP.BIN", 30, 2000))
	img.SetFAT(30, 31)
	img.SetFAT(31, 30)

	img.AddRootEntry(10, file("BROKEN.BIN", 40, 1500))
	img.SetFAT(40, 41)

	img.AddRootEntry(11, file("SHORT.BIN", 45, 2000))
	img.Link(45)

	img.AddRootEntry(12, file("NOCLUS.BIN", 0, 10))

	img.AddRootEntry(13, dir("LOOPDIR", 50))
	img.SetFAT(50, 50)

	img.AddRootEntry(14, file("OUTSIDE.BIN", 0xFE0, 10))

	return img
}

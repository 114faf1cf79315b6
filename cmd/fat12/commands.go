package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aligator/fat12"
	"github.com/aligator/fat12/fusefs"
	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"
)

var (
	errMissingImage = errors.New("missing argument IMAGE")
	errMissingPath  = errors.New("missing argument PATH")
)

const timeLayout = "2006-01-02 15:04:05"

// listing is one line of the output of `ls`.
type listing struct {
	Name     string `csv:"name"`
	Type     string `csv:"type"`
	Size     uint32 `csv:"size"`
	Cluster  uint16 `csv:"cluster"`
	Modified string `csv:"modified"`
}

func newListing(entry fat12.DirEntry) listing {
	l := listing{
		Name:    entry.Name,
		Type:    "file",
		Size:    entry.Size,
		Cluster: entry.FirstCluster,
	}
	if entry.IsDirectory {
		l.Type = "dir"
		l.Size = 0
	}
	if !entry.Created.IsZero() {
		l.Modified = entry.Created.Format(timeLayout)
	}
	return l
}

func (r *runner) info(ctx *cli.Context) error {
	fsys, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer fsys.Close()

	volume := fsys.Volume()
	bs := volume.BootSector()
	geometry := volume.Geometry()
	usage := volume.Usage()

	rows := []struct {
		name  string
		value interface{}
	}{
		{"Label", volume.Label()},
		{"Bytes per sector", bs.BytesPerSector},
		{"Sectors per cluster", bs.SectorsPerCluster},
		{"Reserved sectors", bs.ReservedSectors},
		{"FAT copies", bs.NumFATs},
		{"Sectors per FAT", bs.SectorsPerFAT},
		{"Root entries", bs.RootEntryCount},
		{"Total sectors", bs.TotalSectors},
		{"Media", fmt.Sprintf("0x%02X", bs.Media)},
		{"FAT offset", geometry.FATSectorOffset},
		{"Root offset", geometry.RootDirSectorOffset},
		{"Root sectors", geometry.RootDirSectorCount},
		{"Data offset", geometry.FirstDataSector()},
		{"Total clusters", usage.TotalClusters},
		{"Free clusters", usage.FreeClusters},
		{"Used clusters", usage.UsedClusters},
		{"Bad clusters", usage.BadClusters},
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(r.out, "%-20s %v\n", row.name+":", row.value); err != nil {
			return err
		}
	}

	return nil
}

func (r *runner) ls(ctx *cli.Context) error {
	fsys, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer fsys.Close()

	dirPath := "/"
	if ctx.Args().Len() > 1 {
		dirPath = ctx.Args().Get(1)
	}

	var entries []fat12.DirEntry
	info, err := fsys.Stat(dirPath)
	if err != nil {
		return err
	}

	if info.IsDir() {
		dir, err := fsys.Open(dirPath)
		if err != nil {
			return err
		}
		defer dir.Close()

		infos, err := dir.Readdir(-1)
		if err != nil {
			return err
		}
		for _, info := range infos {
			entries = append(entries, info.Sys().(fat12.DirEntry))
		}
	} else {
		entries = append(entries, info.Sys().(fat12.DirEntry))
	}

	rows := make([]listing, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, newListing(entry))
	}

	if ctx.Bool("csv") {
		return gocsv.Marshal(&rows, r.out)
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(r.out, "%-4s %8d  %-19s  %s\n", row.Type, row.Size, row.Modified, row.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) stat(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return errMissingPath
	}

	fsys, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer fsys.Close()

	info, err := fsys.Stat(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	entry := info.Sys().(fat12.DirEntry)
	l := newListing(entry)

	var chain []uint16
	if entry.FirstCluster != 0 {
		chain, err = fsys.Volume().Chain(entry.FirstCluster)
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(r.out, "Name:       %s\nType:       %s\nSize:       %d\nAttributes: 0x%02X\nModified:   %s\nClusters:   %v\n",
		l.Name, l.Type, l.Size, entry.Attributes, l.Modified, chain)
	return err
}

func (r *runner) cat(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return errMissingPath
	}

	fsys, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer fsys.Close()

	file, err := fsys.Open(ctx.Args().Get(1))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(r.out, file)
	return err
}

func (r *runner) mount(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return errors.New("missing argument MOUNTPOINT")
	}

	fsys, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer fsys.Close()

	server, err := fusefs.Mount(ctx.Args().Get(1), fsys, fusefs.Options{
		FsName:     ctx.Args().Get(0),
		AllowOther: r.config.Mount.AllowOther,
		Debug:      r.config.Mount.Debug,
		Timeout:    r.config.Mount.Timeout,
		Log:        r.log,
	})
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signals
		r.log.WithField("signal", sig).Info("unmounting")
		if err := server.Unmount(); err != nil {
			r.log.WithError(err).Error("unmount failed")
		}
	}()

	server.Wait()
	return nil
}

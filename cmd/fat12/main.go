package main

import (
	"io"
	"os"

	"github.com/aligator/fat12"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logrus.New()

	app := newApp(afero.NewOsFs(), os.Stdout, log)
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

// runner holds everything the commands share.
type runner struct {
	fs     afero.Fs
	out    io.Writer
	log    *logrus.Logger
	config Config
}

func newApp(fs afero.Fs, out io.Writer, log *logrus.Logger) *cli.App {
	r := &runner{
		fs:     fs,
		out:    out,
		log:    log,
		config: defaultConfig(),
	}

	return &cli.App{
		Name:   "fat12",
		Usage:  "Inspect FAT12 disk images",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "load the configuration from `FILE`",
				Value: defaultConfigPath(),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "one of panic, fatal, error, warn, info, debug, trace",
			},
			&cli.BoolFlag{
				Name:  "skip-checks",
				Usage: "open images which do not follow the FAT specification completely",
			},
		},
		Before: r.before,
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Show the boot sector, geometry and usage of an image",
				ArgsUsage: "IMAGE",
				Action:    r.info,
			},
			{
				Name:      "ls",
				Usage:     "List a directory",
				ArgsUsage: "IMAGE [PATH]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "print the listing as CSV",
					},
				},
				Action: r.ls,
			},
			{
				Name:      "stat",
				Usage:     "Show the directory entry of a file or directory",
				ArgsUsage: "IMAGE PATH",
				Action:    r.stat,
			},
			{
				Name:      "cat",
				Usage:     "Print the content of a file",
				ArgsUsage: "IMAGE PATH",
				Action:    r.cat,
			},
			{
				Name:      "mount",
				Usage:     "Mount an image read-only using FUSE",
				ArgsUsage: "IMAGE MOUNTPOINT",
				Action:    r.mount,
			},
		},
	}
}

func (r *runner) before(ctx *cli.Context) error {
	config, err := readConfig(r.fs, ctx.String("config"), ctx.IsSet("config"))
	if err != nil {
		return err
	}

	if ctx.IsSet("log-level") {
		config.LogLevel = ctx.String("log-level")
	}
	if ctx.Bool("skip-checks") {
		config.SkipChecks = true
	}

	if err := config.setupLogging(r.log); err != nil {
		return err
	}

	r.config = config
	return nil
}

// open opens the image given as first argument.
func (r *runner) open(ctx *cli.Context) (*fat12.Fs, error) {
	if ctx.Args().Len() < 1 {
		return nil, errMissingImage
	}

	opts := []fat12.Option{fat12.WithLogger(r.log)}
	if r.config.SkipChecks {
		opts = append(opts, fat12.SkipChecks())
	}

	volume, err := fat12.OpenFile(r.fs, ctx.Args().Get(0), opts...)
	if err != nil {
		return nil, err
	}

	return fat12.NewFromVolume(volume), nil
}

package main

import (
	"errors"
	"os"

	"github.com/aligator/fat12/internal/fat12test"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

// main writes the images used by the tests to disk, e.g. to inspect them with
// other tools or to mount them.
func main() {
	if err := newApp(afero.NewOsFs()).Run(os.Args); err != nil {
		logrus.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp(fs afero.Fs) *cli.App {
	return &cli.App{
		Name:      "mkimage",
		Usage:     "Write a small FAT12 sample image",
		ArgsUsage: "OUTPUT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "corrupt",
				Usage: "add entries with broken cluster chains",
			},
			&cli.StringFlag{
				Name:  "label",
				Usage: "set the volume label of the boot sector",
			},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.Args().Len() < 1 {
				return errors.New("missing argument OUTPUT")
			}
			return writeImage(fs, ctx.Args().Get(0), ctx.Bool("corrupt"), ctx.String("label"))
		},
	}
}

func writeImage(fs afero.Fs, name string, corrupt bool, label string) error {
	img := fat12test.Sample()
	if corrupt {
		img = fat12test.Corrupt()
	}
	if label != "" {
		img.SetBootLabel(label)
	}

	if err := afero.WriteFile(fs, name, img.Bytes(), 0644); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"file":    name,
		"size":    len(img.Bytes()),
		"corrupt": corrupt,
	}).Info("image written")
	return nil
}

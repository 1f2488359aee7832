package main

import (
	"io/ioutil"
	"log"
	"os"

	"github.com/bodgit/bmpreduce"
	"github.com/bodgit/bmpreduce/bmp"
	"github.com/bodgit/bmpreduce/catalog"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newConverter(c *cli.Context) (*bmpreduce.Converter, func(), error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	if c.String("db") == "" {
		return bmpreduce.New(nil, logger), func() {}, nil
	}

	cat, err := catalog.New(c.String("db"))
	if err != nil {
		return nil, nil, err
	}

	return bmpreduce.New(cat, logger), func() { cat.Close() }, nil
}

func dimensions(c *cli.Context) bmp.Dimensions {
	return bmp.Dimensions{
		Width:  c.Int("width"),
		Height: c.Int("height"),
	}
}

func options(c *cli.Context) bmpreduce.Options {
	opts := bmpreduce.DefaultOptions()
	opts.Dimensions = dimensions(c)
	opts.Halt = c.Bool("halt")
	opts.AdaptiveColors = c.Int("adaptive")
	return opts
}

func main() {
	app := cli.NewApp()

	app.Name = "bmpreduce"
	app.Usage = "Reduce 32-bit bitmaps to palettized, grayscale and monochrome bitmaps"
	app.Version = "1.0.0"

	dimensionFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "width",
			Value: bmpreduce.DefaultDimensions.Width,
			Usage: "working width in pixels",
		},
		&cli.IntFlag{
			Name:  "height",
			Value: bmpreduce.DefaultDimensions.Height,
			Usage: "working height in pixels",
		},
	}

	runFlags := append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "halt",
			Usage: "stop at the first failed stage",
		},
		&cli.IntFlag{
			Name:  "adaptive",
			Usage: "also write an 8-bit bitmap with a median cut palette of up to `N` colors",
		},
	}, dimensionFlags...)

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"BMPREDUCE_DB"},
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert input.bmp in a directory",
			Description: "Reads input.bmp and writes temp_output.hex, reduced_output.hex, final_image.bmp, grayscale8.bmp and binary1.bmp alongside it.",
			ArgsUsage:   "[DIRECTORY]",
			Flags: append([]cli.Flag{
				&cli.BoolFlag{
					Name:  "compress",
					Usage: "zstd compress the intermediate hex files",
				},
			}, runFlags...),
			Action: func(c *cli.Context) error {
				dir := "."
				if c.NArg() > 0 {
					dir = c.Args().First()
				}

				converter, closer, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				files := bmpreduce.DefaultFiles(dir)
				if c.Bool("compress") {
					files = files.Compressed()
				}

				if err := converter.Run(files, options(c)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "prepare",
			Usage:       "Convert any image into a 32-bit bitmap",
			Description: "Decodes a PNG, JPEG, GIF or BMP image and resamples it to the working size.",
			ArgsUsage:   "INPUT OUTPUT",
			Flags:       dimensionFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				converter, closer, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				if err := converter.Prepare(c.Args().Get(0), c.Args().Get(1), dimensions(c)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Convert every bitmap below a directory",
			Description: "Each NAME.bmp is converted into the directory NAME.reduced.",
			ArgsUsage:   "DIRECTORY",
			Flags:       runFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				converter, closer, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closer()

				if err := converter.Scan(c.Args().First(), options(c)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

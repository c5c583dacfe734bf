package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bodgit/wbox"
	"github.com/bodgit/wbox/container"
	"github.com/bodgit/wbox/internal/atomicfile"
	"github.com/bodgit/wbox/palette"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultDB = "wbox.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openDB(c *cli.Context) (*wbox.PaletteDB, error) {
	return wbox.NewPaletteDB(c.String("db"))
}

func policy(c *cli.Context) (palette.Policy, error) {
	return palette.ParsePolicy(c.String("policy"))
}

func loadImage(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	return m, err
}

var policyFlag = &cli.StringFlag{
	Name:    "policy",
	EnvVars: []string{"WBOX_POLICY"},
	Value:   palette.Nearest.String(),
	Usage:   "how to resolve colors missing from the palette, strict or nearest",
}

func convert(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	p, err := policy(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	layout, err := container.ParseLayout(c.String("format"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var db *wbox.PaletteDB
	if strings.HasPrefix(c.String("palette"), wbox.DBPrefix) {
		if db, err = openDB(c); err != nil {
			return cli.NewExitError(err, 1)
		}
		defer db.Close()
	}

	w := wbox.New(db, newLogger(c))
	if n := c.Int("workers"); n > 0 {
		w.SetWorkers(n)
	}

	if err := w.Convert(wbox.Job{
		Image:     c.Args().First(),
		FreezeMap: c.String("freeze-map"),
		Palette:   c.String("palette"),
		Policy:    p,
		WorldLaws: c.String("world-laws"),
		Template:  c.String("map-data"),
		Schema:    c.String("schema"),
		Output:    c.String("output"),
		Layout:    layout,
		Preview:   c.String("preview"),
		Swatch:    c.String("swatch"),
	}); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func exportSwatch(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	var db *wbox.PaletteDB
	src := c.Args().Get(0)
	if strings.HasPrefix(src, wbox.DBPrefix) {
		var err error
		if db, err = openDB(c); err != nil {
			return cli.NewExitError(err, 1)
		}
		defer db.Close()
	}

	p, err := wbox.New(db, newLogger(c)).LoadPalette(src, palette.Strict)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	name := c.String("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(strings.TrimPrefix(src, wbox.DBPrefix)), filepath.Ext(src))
	}

	if err := wbox.WriteSwatch(c.Args().Get(1), p, name); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func importPalette(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	db, err := openDB(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	if err := db.ImportPalette(c.Args().Get(0), c.Args().Get(1)); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func listPalettes(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	list, err := db.ListPalettes()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	for _, p := range list {
		fmt.Fprintf(c.App.Writer, "%s\t%d\t%s\n", p.Name, p.Entries, p.SHA1)
	}

	return nil
}

func suggestPalette(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	m, err := loadImage(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	p, err := palette.Suggest(m, c.Int("colors"), palette.Strict)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := atomicfile.Write(c.Args().Get(1), 0o644, func(w io.Writer) error {
		return palette.Encode(w, p)
	}); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func inspect(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	d, err := container.Decode(f)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Size: %dx%d\n", d.Width, d.Height)

	h := d.Histogram()
	terrains := make([]string, 0, len(h))
	for t := range h {
		terrains = append(terrains, t)
	}
	sort.Strings(terrains)
	fmt.Fprintln(w, "Terrain:")
	for _, t := range terrains {
		fmt.Fprintf(w, "  %s\t%d\n", t, h[t])
	}

	frozen := 0
	for _, t := range d.Tiles {
		if t.Frozen {
			frozen++
		}
	}
	fmt.Fprintf(w, "Frozen: %d\n", frozen)
	fmt.Fprintf(w, "Laws enabled: %s\n", strings.Join(d.EnabledLaws(), ", "))
	fmt.Fprintf(w, "Template keys: %s\n", strings.Join(d.Template.Keys(), ", "))

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "wbox"
	app.Usage = "WorldBox map converter"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"WBOX_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to palette database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert an image into a map",
			ArgsUsage: "IMAGE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "palette",
					Aliases: []string{"p"},
					EnvVars: []string{"WBOX_PALETTE"},
					Value:   filepath.Join("palettes", "no-special.txt"),
					Usage:   "palette file, or db:NAME for a stored palette",
				},
				policyFlag,
				&cli.StringFlag{
					Name:    "map-data",
					Aliases: []string{"m"},
					EnvVars: []string{"WBOX_MAP_DATA"},
					Value:   "map_data.json",
					Usage:   "JSON or YAML map template, empty for none",
				},
				&cli.StringFlag{
					Name:  "schema",
					Usage: "JSON Schema to validate the map template against",
				},
				&cli.StringFlag{
					Name:    "world-laws",
					Aliases: []string{"w"},
					EnvVars: []string{"WBOX_WORLD_LAWS"},
					Value:   filepath.Join("worldlaws", "default.txt"),
					Usage:   "world laws file",
				},
				&cli.StringFlag{
					Name:    "freeze-map",
					Aliases: []string{"f"},
					Usage:   "image where white pixels mark frozen tiles",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "map.wbox",
					Usage:   "output map file",
				},
				&cli.StringFlag{
					Name:  "format",
					Value: container.Native.String(),
					Usage: "output layout, wbox-map or worldbox",
				},
				&cli.StringFlag{
					Name:  "preview",
					Usage: "also write a PNG preview of the resolved map",
				},
				&cli.StringFlag{
					Name:  "swatch",
					Usage: "also export the palette as swatches (.ase or .gpl)",
				},
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of goroutines resolving pixels, 0 for one per CPU",
				},
			},
			Action: convert,
		},
		{
			Name:        "swatch",
			Usage:       "Export a palette as image editor swatches",
			Description: "The format is chosen by the output extension, .gpl for GIMP, anything else for Adobe Swatch Exchange.",
			ArgsUsage:   "PALETTE OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "name",
					Usage: "palette title, defaults to the palette file name",
				},
			},
			Action: exportSwatch,
		},
		{
			Name:  "palette",
			Usage: "Manage stored palettes",
			Subcommands: []*cli.Command{
				{
					Name:      "import",
					Usage:     "Import a palette file into the database",
					ArgsUsage: "NAME FILE",
					Action:    importPalette,
				},
				{
					Name:   "list",
					Usage:  "List stored palettes",
					Action: listPalettes,
				},
				{
					Name:      "suggest",
					Usage:     "Generate a starter palette from the colors in an image",
					ArgsUsage: "IMAGE OUTPUT",
					Flags: []cli.Flag{
						&cli.IntFlag{
							Name:    "colors",
							Aliases: []string{"n"},
							Value:   16,
							Usage:   "maximum number of palette entries",
						},
					},
					Action: suggestPalette,
				},
			},
		},
		{
			Name:      "inspect",
			Usage:     "Summarise a map file",
			ArgsUsage: "MAP",
			Action:    inspect,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

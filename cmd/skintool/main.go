// skintool inspects texture atlases and the attachment geometry built from
// them, renders headless previews, and packs GRF archives.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-skin/internal/assets"
	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/internal/logger"
	"github.com/Faultbox/midgard-skin/pkg/atlas"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "regions", "ls":
		cmdRegions(args)
	case "quad":
		cmdQuad(args)
	case "frame":
		cmdFrame(args)
	case "preview":
		cmdPreview(args)
	case "archive", "grf":
		cmdArchive(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skintool - texture atlas and skin attachment utility

Usage:
  skintool <command> [options]

Commands:
  regions <atlas>                      List atlas regions
  quad <atlas> <region>                Print the vertex buffer of a region attachment
  frame <atlas> <name>                 Show which sequence frame plays at a time
  preview <atlas>                      Render the showcase scene to an image
  archive list <file.grf> [pattern]    List files in a GRF archive
  archive extract <file.grf> <path> [output]
  archive pack <out.grf> <dir>         Pack a directory into a GRF archive

Common options:
  -config <file>   Config file (data.search_dirs and data.grf_paths locate atlases)
  -debug           Debug logging

An <atlas> ending in .spr is read as a Ragnarok Online sprite whose frames
form a sequence named after the file.

Examples:
  skintool regions skins/actors.atlas
  skintool quad -rotation 30 -pma skins/actors.atlas head
  skintool frame -mode pingPong -time 0.45 skins/actors.atlas blink
  skintool preview -o actors.webp skins/actors.atlas
  skintool frame -duration 0.1 -steps 8 data/sprite/poring.spr poring
  skintool archive pack skins.grf ./skins`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func usage(line string) {
	fmt.Fprintln(os.Stderr, "Usage: skintool "+line)
	os.Exit(1)
}

// setup parses fs with the shared config flags registered, loads the
// config and starts logging. The first positional argument, if present,
// is the atlas path.
func setup(fs *flag.FlagSet, args []string) *config.Config {
	var flags config.Flags
	flags.Register(fs)
	fs.Parse(args)
	if fs.NArg() > 0 {
		flags.Atlas = fs.Arg(0)
	}

	cfg, err := config.Load(&flags)
	if err != nil {
		fail(err)
	}
	level := "warn"
	if flags.Debug {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		fail(err)
	}
	return cfg
}

// openSources mounts the configured directories and archives.
func openSources(cfg *config.Config) *assets.Manager {
	m := assets.NewManager(logger.Named("assets"))
	for _, dir := range cfg.Data.SearchDirs {
		m.AddDir(dir)
	}
	for _, p := range cfg.Data.GRFPaths {
		if err := m.AddArchive(p); err != nil {
			fail(err)
		}
	}
	return m
}

// parseAtlas reads and parses an atlas without decoding its pages. Sprites
// are decoded and packed.
func parseAtlas(m *assets.Manager, path string) *atlas.Atlas {
	if atlas.IsSprite(path) {
		a, err := atlas.LoadSprite(m, path)
		if err != nil {
			fail(err)
		}
		return a
	}
	data, err := m.Read(path)
	if err != nil {
		fail(err)
	}
	a, err := atlas.Parse(bytes.NewReader(data))
	if err != nil {
		fail(fmt.Errorf("parsing %s: %w", path, err))
	}
	return a
}

func cmdRegions(args []string) {
	fs := flag.NewFlagSet("regions", flag.ExitOnError)
	filter := fs.String("match", "", "Only regions whose name contains this text")
	cfg := setup(fs, args)
	if cfg.Atlas.Path == "" {
		usage("regions <atlas>")
	}
	defer logger.Sync()

	m := openSources(cfg)
	defer m.Close()
	a := parseAtlas(m, cfg.Atlas.Path)

	for _, page := range a.Pages() {
		fmt.Printf("%s  %dx%d  %s\n", page.Name, page.Width, page.Height, page.Format)
		for _, r := range page.Regions() {
			if *filter != "" && !strings.Contains(r.Name, *filter) {
				continue
			}
			var flags []string
			if r.Rotate {
				flags = append(flags, "rotated")
			}
			if r.Trimmed() {
				flags = append(flags, fmt.Sprintf("trimmed orig=%dx%d offset=%g,%g",
					r.OriginalWidth, r.OriginalHeight, r.OffsetX, r.OffsetY))
			}
			name := r.Name
			if r.Index >= 0 {
				name = fmt.Sprintf("%s[%d]", r.Name, r.Index)
			}
			fmt.Printf("  %-24s xy=%d,%d size=%dx%d uv=%.4f,%.4f-%.4f,%.4f %s\n",
				name, r.X, r.Y, r.PackedWidth, r.PackedHeight, r.U, r.V, r.U2, r.V2,
				strings.Join(flags, " "))
		}
	}
	fmt.Fprintf(os.Stderr, "\n(%d regions, %d names)\n", len(a.Regions()), len(a.Names()))
}

// writeFile creates parent directories and writes data.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

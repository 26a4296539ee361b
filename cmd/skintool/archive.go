package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-skin/pkg/grf"
)

func cmdArchive(args []string) {
	if len(args) < 1 {
		usage("archive <list|extract|pack> ...")
	}
	switch args[0] {
	case "list", "ls":
		cmdArchiveList(args[1:])
	case "extract", "x":
		cmdArchiveExtract(args[1:])
	case "pack":
		cmdArchivePack(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown archive command: %s\n", args[0])
		os.Exit(1)
	}
}

func cmdArchiveList(args []string) {
	fset := flag.NewFlagSet("archive list", flag.ExitOnError)
	limit := fset.Int("n", 0, "Limit output to N files (0 = all)")
	atlases := fset.Bool("atlases", false, "Only list .atlas files")
	fset.Parse(args)

	if fset.NArg() < 1 {
		usage("archive list <file.grf> [pattern]")
	}

	archive, err := grf.Open(fset.Arg(0))
	if err != nil {
		fail(err)
	}
	defer archive.Close()

	pattern := ""
	if fset.NArg() > 1 {
		pattern = strings.ToLower(fset.Arg(1))
	}

	count := 0
	for _, f := range archive.List() {
		if *atlases && !strings.EqualFold(filepath.Ext(f), ".atlas") {
			continue
		}
		if pattern != "" {
			matched, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(f)))
			if !matched && !strings.Contains(strings.ToLower(f), pattern) {
				continue
			}
		}
		entry, _ := archive.Entry(f)
		fmt.Printf("%10d  %s\n", entry.UncompressedSize, f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	fmt.Fprintf(os.Stderr, "\n(%d files)\n", count)
}

func cmdArchiveExtract(args []string) {
	fset := flag.NewFlagSet("archive extract", flag.ExitOnError)
	fset.Parse(args)

	if fset.NArg() < 2 {
		usage("archive extract <file.grf> <path|pattern> [output_dir]")
	}

	name := fset.Arg(1)
	outputDir := "."
	if fset.NArg() > 2 {
		outputDir = fset.Arg(2)
	}

	archive, err := grf.Open(fset.Arg(0))
	if err != nil {
		fail(err)
	}
	defer archive.Close()

	if !strings.Contains(name, "*") {
		data, err := archive.Read(name)
		if err != nil {
			fail(err)
		}
		outputPath := filepath.Join(outputDir, filepath.Base(name))
		if err := writeFile(outputPath, data); err != nil {
			fail(err)
		}
		fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
		return
	}

	pattern := strings.ToLower(name)
	extracted := 0
	for _, f := range archive.List() {
		if matched, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(f))); !matched {
			continue
		}
		data, err := archive.Read(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f, err)
			continue
		}
		// Preserve directory structure
		outputPath := filepath.Join(outputDir, filepath.FromSlash(f))
		if err := writeFile(outputPath, data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}
		fmt.Printf("Extracted: %s\n", outputPath)
		extracted++
	}
	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
}

func cmdArchivePack(args []string) {
	fset := flag.NewFlagSet("archive pack", flag.ExitOnError)
	prefix := fset.String("prefix", "", "Path prefix for entries inside the archive")
	fset.Parse(args)

	if fset.NArg() < 2 {
		usage("archive pack [-prefix data/skins] <out.grf> <dir>")
	}
	outPath, root := fset.Arg(0), fset.Arg(1)

	f, err := os.Create(outPath)
	if err != nil {
		fail(err)
	}
	w := grf.NewWriter(f)

	count := 0
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if *prefix != "" {
			name = strings.TrimSuffix(*prefix, "/") + "/" + name
		}
		w.Add(name, data)
		count++
		return nil
	})
	if err == nil {
		err = w.Close()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(outPath)
		fail(err)
	}
	fmt.Printf("Packed %d files into %s\n", count, outPath)
}

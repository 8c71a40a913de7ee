// vrmtool is a CLI utility for inspecting VRM avatars and GLB files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/vrmload/internal/config"
	"github.com/Faultbox/vrmload/internal/logger"
	"github.com/Faultbox/vrmload/pkg/glb"
	"github.com/Faultbox/vrmload/pkg/vrm"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	var code int
	switch command {
	case "info":
		code = cmdInfo(cfg, args)
	case "chunks":
		code = cmdChunks(args)
	case "accessors", "acc":
		code = cmdAccessors(cfg, args)
	case "dump":
		code = cmdDump(cfg, args)
	case "images", "img":
		code = cmdImages(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}

	logger.Sync()
	os.Exit(code)
}

func printUsage() {
	fmt.Println(`vrmtool - VRM / GLB inspection utility

Usage:
  vrmtool [-config path] [-debug] [-workers N] [-allow-prohibited] <command> [options]

Commands:
  info <file...>               Show model summary (loads files in parallel)
  chunks <file>                Show GLB chunk layout
  accessors <file> [-n N]      List accessors with their first N elements
  dump <file> <accessor>       Print every element of one accessor
  images <file>                List embedded images

Examples:
  vrmtool info AliciaSolid.vrm Seed-san.vrm
  vrmtool chunks model.glb
  vrmtool accessors model.vrm -n 5
  vrmtool -allow-prohibited dump model.vrm 12`)
}

func newLoader(cfg *config.Config) *vrm.Loader {
	return vrm.NewLoader(
		vrm.WithLogger(logger.Named("vrm")),
		vrm.WithLicenseCheck(cfg.License.Enforce),
		vrm.WithMaxFileSize(cfg.Decode.MaxFileSize()),
	)
}

func loadOrExit(cfg *config.Config, path string) *vrm.Model {
	m, err := newLoader(cfg).LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return m
}

func cmdInfo(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vrmtool info <file...>")
		return 1
	}

	loader := newLoader(cfg)
	models := make([]*vrm.Model, len(args))
	errs := make([]error, len(args))

	var g errgroup.Group
	g.SetLimit(max(cfg.Decode.Workers, 1))
	for i, path := range args {
		g.Go(func() error {
			models[i], errs[i] = loader.LoadFile(path)
			return nil
		})
	}
	_ = g.Wait()

	code := 0
	for i, path := range args {
		if i > 0 {
			fmt.Println()
		}
		if errs[i] != nil {
			logger.Warn("load failed", zap.String("file", path), zap.Error(errs[i]))
			code = 1
			continue
		}
		logger.Debug("loaded", zap.String("file", path), zap.Int("accessors", len(models[i].Accessors)))
		printInfo(os.Stdout, models[i])
	}
	return code
}

func cmdChunks(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vrmtool chunks <file>")
		return 1
	}

	c, err := glb.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Version: %d\n", c.Version)
	fmt.Printf("Length:  %d bytes\n", c.Length)
	fmt.Println()
	fmt.Printf("  %-8s %10s %10s\n", "TYPE", "OFFSET", "LENGTH")
	for _, ch := range c.Chunks {
		fmt.Printf("  %-8s %10d %10d\n", ch.Type, ch.Offset, ch.Length)
	}
	return 0
}

func cmdAccessors(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("accessors", flag.ExitOnError)
	preview := fs.Int("n", cfg.Decode.PreviewCount, "Elements to show per accessor")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vrmtool accessors <file> [-n N]")
		return 1
	}
	path := fs.Arg(0)
	// Allow flags after the file name
	fs.Parse(fs.Args()[1:])

	m := loadOrExit(cfg, path)
	printAccessors(os.Stdout, m, *preview)
	return 0
}

func cmdDump(cfg *config.Config, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: vrmtool dump <file> <accessor>")
		return 1
	}

	index, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid accessor index: %s\n", args[1])
		return 1
	}

	m := loadOrExit(cfg, args[0])
	d, err := m.Accessors.Accessor(index)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	printAccessor(os.Stdout, index, m.Document.Accessors[index].Name, d, d.Len())
	return 0
}

func cmdImages(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: vrmtool images <file>")
		return 1
	}

	m := loadOrExit(cfg, args[0])
	printImages(os.Stdout, m)
	return 0
}

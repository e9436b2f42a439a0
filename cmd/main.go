package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/backends"
	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/filesystem"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/brettbedarf/treefs/server"
	"github.com/brettbedarf/treefs/treedef"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		outDir     string
		backend    string
		mnt        string
		temp       bool
		keep       bool
		dryRun     bool
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&outDir, "out", ".", "Directory the tree is created under")
	flag.StringVar(&outDir, "o", ".", "--out (shorthand)")
	flag.StringVar(&backend, "backend", config.DefaultBackend, "Backend to create the tree on: os, memmap or mem")
	flag.StringVar(&backend, "b", config.DefaultBackend, "--backend (shorthand)")
	flag.StringVar(&mnt, "mount", "", "Create the tree in memory and serve it read-only over FUSE at this mount point")
	flag.StringVar(&mnt, "m", "", "--mount (shorthand)")
	flag.BoolVar(&temp, "temp", false, "Create the tree in a fresh temporary directory and print its path")
	flag.BoolVar(&keep, "keep", false, "Keep the temporary directory from -temp instead of removing it on exit")
	flag.BoolVar(&dryRun, "dry", false, "Print the operations that would run without running them")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the mount point first if needed. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <tree-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Config file first, explicitly set flags win over it
	cfg := config.NewDefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.NewConfigFromFile(configPath); err != nil {
			util.InitializeLogger(config.VerboseToLogLevel(verbose), nil)
			logger := util.GetLogger("main")
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
	}
	cfg.Merge(flagOverride(verbose, backend, dryRun))

	util.InitializeLogger(cfg.LogLvl, nil)
	logger := util.GetLogger("main")

	defPath := flag.Arg(0)
	if defPath == "" {
		flag.Usage()
		logger.Fatal().Msg("Tree definition not specified; it must be passed as the argument")
	}

	tree, err := treedef.LoadFile(defPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load tree definition")
	}
	logger.Debug().Str("tree", defPath).Int("ops", tree.Len()).Msg("Tree definition loaded")

	switch {
	case cfg.DryRun:
		err = plan(os.Stdout, outDir, tree)
	case mnt != "":
		err = mount(cfg, mnt, umount, tree)
	case temp:
		err = createTemp(os.Stdout, cfg, keep, tree)
	default:
		err = create(cfg, outDir, tree)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create tree")
	}
}

// flagOverride turns the flags the user actually set into a config override
func flagOverride(verbose int, backend string, dryRun bool) *config.ConfigOverride {
	var override config.ConfigOverride
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose", "v":
			override.LogLvl = &verbose
		case "backend", "b":
			override.Backend = &backend
		case "dry":
			override.DryRun = &dryRun
		}
	})
	return &override
}

func plan(w io.Writer, root string, tree treefs.Tree) error {
	ops, err := treefs.Plan(root, tree)
	for _, op := range ops {
		switch op.Kind {
		case treefs.OpCreateDir:
			fmt.Fprintf(w, "%s %s\n", op.Kind, op.Path)
		case treefs.OpWriteFile:
			if op.Deferred() {
				fmt.Fprintf(w, "%s %s (deferred)\n", op.Kind, op.Path)
				continue
			}
			fmt.Fprintf(w, "%s %s (%d bytes)\n", op.Kind, op.Path, len(op.Data))
		default:
			fmt.Fprintf(w, "%s %s (%d bytes)\n", op.Kind, op.Path, len(op.Data))
		}
	}
	return err
}

func create(cfg *config.Config, root string, tree treefs.Tree) error {
	logger := util.GetLogger("main.create")

	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	if err := b.CreateDir(root); err != nil {
		return err
	}
	if err := treefs.Create(b, root, tree); err != nil {
		return err
	}
	logger.Info().Str("root", root).Str("backend", cfg.Backend).Int("ops", tree.Len()).Msg("Tree created")
	return nil
}

func createTemp(w io.Writer, cfg *config.Config, keep bool, tree treefs.Tree) error {
	logger := util.GetLogger("main.createTemp")

	b, err := newBackend(cfg)
	if err != nil {
		return err
	}
	dir, err := treefs.CreateTemp(b, tree)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, dir.Path())
	logger.Info().Str("root", dir.Path()).Str("backend", cfg.Backend).Bool("keep", keep).Msg("Tree created")

	if keep {
		return nil
	}
	return dir.Close()
}

// mount creates the tree in memory and serves it until SIGINT or SIGTERM
func mount(cfg *config.Config, mnt string, umount bool, tree treefs.Tree) error {
	logger := util.GetLogger("main.mount")

	// Try unmount if requested
	if umount {
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	fsys := filesystem.NewFS(cfg)
	if err := treefs.Create(fsys, "", tree); err != nil {
		return err
	}

	tfs := server.NewWithFS(fsys, cfg)
	if err := tfs.Serve(mnt); err != nil {
		return err
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	logger.Info().Str("mountpoint", mnt).Int("ops", tree.Len()).Msg("Filesystem mounted successfully")

	// Wait for termination signal
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	if err := tfs.Unmount(); err != nil {
		return err
	}
	logger.Info().Msg("Filesystem unmounted successfully")
	return nil
}

func newBackend(cfg *config.Config) (treefs.TempBackend, error) {
	// Register all built-in backends
	backends.RegisterDefaultBuiltins()
	return backends.New(cfg)
}

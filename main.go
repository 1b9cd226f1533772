package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leafo/mediacat/internal/catalog"
)

func main() {
	var (
		configPath  string
		journalPath string
		hookCommand string
		thresholdMB int64
		logLevel    string
	)

	flag.StringVar(&configPath, "config", "", "path to a JSON config file")
	flag.StringVar(&journalPath, "journal", "", "path to a SQLite database journaling catalog mutations")
	flag.StringVar(&hookCommand, "hook", "", "shell command receiving each catalog mutation as JSON on stdin")
	flag.Int64Var(&thresholdMB, "threshold-mb", 0, "size in MB above which a file is expected to be a movie")
	flag.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <root> [query]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := catalog.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if journalPath != "" {
		cfg.JournalPath = journalPath
	}
	if hookCommand != "" {
		cfg.HookCommand = hookCommand
	}
	if thresholdMB > 0 {
		cfg.SizeThresholdMB = thresholdMB
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	logger := slog.New(handler)

	args := flag.Args()
	root := cfg.Root
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		flag.Usage()
		os.Exit(1)
	}
	query := ""
	if len(args) > 1 {
		query = args[1]
	}

	ctx := context.Background()

	opts := cfg.Options()
	opts.Logger = logger

	if cfg.JournalPath != "" {
		db, err := catalog.OpenDatabase(ctx, cfg.JournalPath)
		if err != nil {
			logger.Error("Failed to open journal", "path", cfg.JournalPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("Opened journal", "path", cfg.JournalPath)
		opts.Targets = append(opts.Targets, catalog.NewJournal(db))
	}
	if target := catalog.NewShellTarget(cfg.HookCommand); target != nil {
		opts.Targets = append(opts.Targets, target)
	}

	col, err := catalog.New(ctx, root, opts)
	if err != nil {
		logger.Error("Failed to build catalog", "root", root, "error", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stdout, col.Root())
	if query == "" {
		return
	}

	absQuery := query
	if !filepath.IsAbs(absQuery) {
		absQuery = filepath.Join(col.RootPath(), query)
	}
	folder, err := col.OpenFolder(absQuery)
	if err != nil {
		fmt.Fprintf(os.Stdout, "%s: %v\n", absQuery, err)
		os.Exit(1)
	}
	printFolder(folder)
}

func printFolder(folder *catalog.FolderNode) {
	fmt.Fprintf(os.Stdout, "%s (depth %d)\n", folder, folder.Depth())
	fmt.Fprintf(os.Stdout, "  %s: %d\n", catalog.Folder, folder.Count(catalog.Folder))
	for _, category := range catalog.FileCategories {
		fmt.Fprintf(os.Stdout, "  %s: %d\n", category, folder.Count(category))
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"docrag/internal/app"
	"docrag/internal/config"
	"docrag/internal/loader"
	"docrag/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	flag.Parse()
	patterns := flag.Args()
	if len(patterns) == 0 {
		fmt.Println("Usage: docrag-ingest [--config=config.yaml] 'docs/**/*.pdf' [pattern ...]")
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var paths []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			log.Error("bad glob pattern", "pattern", p, "error", err)
			os.Exit(1)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if loader.SupportedExtension(m) {
				paths = append(paths, m)
			}
		}
	}
	if len(paths) == 0 {
		log.Error("no PDF or DOCX files matched the given patterns")
		os.Exit(1)
	}

	components, err := app.Build(cfg, log)
	if err != nil {
		log.Error("failed to assemble pipelines", "error", err)
		os.Exit(1)
	}
	ctx := context.Background()
	if err := components.EnsureIndex(ctx, cfg, log); err != nil {
		log.Error("could not initialize index", "error", err)
		os.Exit(1)
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("reading"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	var uploads []service.FileUpload
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable file", "path", path, "error", err)
			_ = bar.Add(1)
			continue
		}
		uploads = append(uploads, service.FileUpload{Content: content, Filename: path})
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	stats, err := components.Ingestion.Ingest(ctx, uploads)
	if err != nil {
		log.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d files: %d sections, %d chunks, %d vectors (embed %.1f ms, upsert %.1f ms, total %.1f ms)\n",
		stats.FilesProcessed, stats.SectionsLoaded, stats.ChunksCreated, stats.VectorsStored,
		stats.EmbedTimeMs, stats.UpsertTimeMs, stats.TotalTimeMs)
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"docrag/internal/app"
	"docrag/internal/config"
	"docrag/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	components, err := app.Build(cfg, log)
	if err != nil {
		log.Error("failed to assemble pipelines", "error", err)
		os.Exit(1)
	}
	if err := components.EnsureIndex(context.Background(), cfg, log); err != nil {
		// The store may come up later; the server still starts.
		log.Warn("could not initialize index", "error", err)
	}

	srv := server.New(components.Ingestion, components.Answers, components.Store, cfg, log)
	log.Info("starting server",
		"addr", cfg.Server.Addr,
		"store", cfg.Store,
		"endee_url", cfg.Endee.BaseURL,
		"index", cfg.Endee.IndexName,
		"embedding_model", cfg.Embedding.Model,
		"llm_model", cfg.LLM.Model,
	)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docrag/internal/app"
	"docrag/internal/config"
	"docrag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	topK := flag.Int("top-k", 5, "Number of chunks to retrieve per question")
	flag.Parse()

	// Keep log noise out of the TUI.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(log)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	components, err := app.Build(cfg, log)
	if err != nil {
		log.Error("failed to assemble pipelines", "error", err)
		os.Exit(1)
	}

	m := tui.New(components.Answers, *topK)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Error("tui stopped", "error", err)
		os.Exit(1)
	}
}

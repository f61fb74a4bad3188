package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/locationscout/scout-engine/pkg/api"
	"github.com/locationscout/scout-engine/pkg/config"
	"github.com/locationscout/scout-engine/pkg/logging"
	"github.com/locationscout/scout-engine/pkg/models"
	"github.com/locationscout/scout-engine/pkg/retry"
	"github.com/locationscout/scout-engine/pkg/store"
	"github.com/locationscout/scout-engine/pkg/stream"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	scriptPath := flag.String("script", "", "path to a screenplay text file to upload")
	title := flag.String("title", "", "script title (defaults to the file name)")
	location := flag.String("location", "Los Angeles, CA", "geographic area to search")
	scenesOut := flag.String("scenes-out", "", "optional path to write analyzed scenes as YAML")
	flag.Parse()

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "usage: scout-engine -script <file> [-title t] [-location l] [-scenes-out f]")
		os.Exit(2)
	}

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	content, err := os.ReadFile(*scriptPath)
	if err != nil {
		logger.Fatal("Failed to read script file", zap.Error(err))
	}
	if *title == "" {
		base := filepath.Base(*scriptPath)
		*title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	logger.Info("Starting scout-engine",
		zap.String("version", cfg.Version),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("client_id", cfg.ClientID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout(), logger)
	st := store.New(apiClient, logger, store.WithSearchOptions(api.SearchOptions{
		Sources:    cfg.Search.Sources,
		MaxResults: cfg.Search.MaxResults,
	}))

	streamClient := stream.NewClient(cfg.APIBaseURL, cfg.ClientID, st, logger)
	supervisor := stream.NewSupervisor(streamClient, &retry.Config{
		InitialDelay: cfg.Stream.ReconnectInitialDelay(),
		MaxDelay:     cfg.Stream.ReconnectMaxDelay(),
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}, cfg.Stream.HealthyAfter(), logger)

	go func() {
		if err := supervisor.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Stream supervision ended", zap.Error(err))
		}
	}()

	if err := st.UploadScript(ctx, *title, string(content)); err != nil {
		logger.Fatal("Upload failed",
			zap.String("message", st.Error()),
			zap.String("cause", logging.SanitizeError(err)))
	}

	if *scenesOut != "" {
		if err := writeScenesYAML(*scenesOut, st.Scenes()); err != nil {
			logger.Fatal("Failed to write scenes", zap.Error(err))
		}
		logger.Info("Scenes written", zap.String("path", *scenesOut))
	}

	if err := st.StartSearch(ctx, *location); err != nil {
		logger.Fatal("Search failed to start",
			zap.String("message", st.Error()),
			zap.String("cause", logging.SanitizeError(err)))
	}

	watch(ctx, st, logger)
	streamClient.Close()
}

// watch logs results as they arrive and returns once the search completes.
func watch(ctx context.Context, st *store.Store, logger *zap.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var seenLocations, seenScores int
	for {
		select {
		case <-ctx.Done():
			logger.Info("Interrupted; leaving search running server-side")
			return
		case <-ticker.C:
			snap := st.Snapshot()

			for _, loc := range snap.Locations[seenLocations:] {
				logger.Info("Location found",
					zap.String("name", loc.Name),
					zap.String("source", loc.Source),
					zap.String("price", loc.Price))
			}
			seenLocations = len(snap.Locations)

			for _, sc := range snap.MatchScores[seenScores:] {
				logger.Info("Location scored",
					zap.String("scene_id", sc.SceneID),
					zap.String("location_id", sc.LocationID),
					zap.Int("overall", sc.OverallScore))
			}
			seenScores = len(snap.MatchScores)

			if !snap.IsSearching {
				logger.Info("Search completed",
					zap.Int("locations", len(snap.Locations)),
					zap.Int("scores", len(snap.MatchScores)))
				return
			}
		}
	}
}

func writeScenesYAML(path string, scenes []models.Scene) error {
	data, err := yaml.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("encode scenes: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

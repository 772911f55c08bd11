package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"investment-agent/internal/export"
	"investment-agent/internal/history"
	"investment-agent/internal/interfaces"
	"investment-agent/internal/logger"
	"investment-agent/internal/trace"
	"investment-agent/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// snapshot holds the latest recommendation set for the exporter. The cron
// schedule fires on its own goroutine, so access is guarded.
type snapshot struct {
	mu   sync.Mutex
	recs []types.Recommendation
}

func (s *snapshot) set(recs []types.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = recs
}

func (s *snapshot) get() []types.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(ctx)

	cfg, err := loadConfig(ctx)
	must(err)
	secrets, err := loadSecrets(ctx)
	must(err)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	hist := initializeHistory(ctx, secrets)
	if hist != nil {
		defer hist.Close()
	}

	analyst := initializeAnalyst(ctx, cfg, secrets)
	fuser := initializeFuser(cfg, secrets, analyst, hist)
	recommender := initializeRecommender(ctx, cfg, secrets, fuser)

	startMetrics(ctx, cfg)

	latest := &snapshot{}
	var exporter *export.Exporter
	var cronStop func()
	if cfg.Export.Enabled {
		exporter = export.New(cfg.Export.Dir)
		cronStop = scheduleExport(ctx, cfg.Export.Schedule, exporter, latest)
	}

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Agent started",
		"universe", cfg.Universe,
		"poll_seconds", cfg.PollSeconds,
		"llm_provider", cfg.LLM.Provider,
	)

	latest.set(evaluateUniverse(ctx, cfg.Universe, recommender, hist))

	for {
		select {
		case <-tick.C:
			latest.set(evaluateUniverse(ctx, cfg.Universe, recommender, hist))
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			if cronStop != nil {
				cronStop()
			}
			if exporter != nil {
				if path, err := exporter.WriteSnapshot(ctx, latest.get()); err != nil {
					logger.ErrorWithErr(ctx, "Final export failed", err)
				} else {
					logger.Info(ctx, "Final export written", "path", path)
				}
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

func evaluateUniverse(ctx context.Context, universe []string, recommender interfaces.Recommender, hist *history.Store) []types.Recommendation {
	recs := make([]types.Recommendation, 0, len(universe))
	for _, symbol := range universe {
		rec, err := recommender.Evaluate(ctx, symbol)
		if err != nil {
			logger.ErrorWithErr(ctx, "Evaluation failed", err, "symbol", symbol)
			continue
		}
		recs = append(recs, rec)

		if hist != nil {
			if err := hist.SaveSentiment(ctx, rec.Sentiment); err != nil {
				logger.Warn(ctx, "Failed to persist sentiment", "symbol", symbol, "error", err.Error())
			}
			if err := hist.SaveRecommendation(ctx, rec); err != nil {
				logger.Warn(ctx, "Failed to persist recommendation", "symbol", symbol, "error", err.Error())
			}
		}

		b, _ := json.Marshal(rec)
		fmt.Println(string(b))
	}
	return recs
}

// Package export writes recommendation snapshots to dated CSV files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"investment-agent/internal/logger"
	"investment-agent/internal/types"
)

// Exporter writes CSV snapshots into a directory. One file per day; a second
// snapshot on the same day overwrites the first.
type Exporter struct {
	dir string
}

// New creates an exporter rooted at dir.
func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

var header = []string{
	"symbol",
	"action",
	"composite_score",
	"price",
	"sentiment_score",
	"sentiment_label",
	"confidence",
	"used_fallback",
	"contributing_sources",
	"market_condition",
	"commentary",
	"time",
}

// WriteSnapshot writes recs to the day's CSV file and returns its path.
func (e *Exporter) WriteSnapshot(ctx context.Context, recs []types.Recommendation) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("recommendations_%s.csv", time.Now().Format("2006-01-02")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("export: write header: %w", err)
	}
	for _, rec := range recs {
		row := []string{
			rec.Symbol,
			rec.Action,
			strconv.FormatFloat(rec.CompositeScore, 'f', 2, 64),
			strconv.FormatFloat(rec.Price, 'f', 2, 64),
			strconv.FormatFloat(rec.Sentiment.Score, 'f', 4, 64),
			string(rec.Sentiment.Label),
			strconv.FormatFloat(rec.Sentiment.Confidence, 'f', 4, 64),
			strconv.FormatBool(rec.Sentiment.UsedFallback),
			strconv.Itoa(len(rec.Sentiment.ContributingSources)),
			rec.Market,
			rec.Commentary,
			time.Unix(rec.Time, 0).UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("export: write row for %s: %w", rec.Symbol, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export: flush: %w", err)
	}

	logger.Info(ctx, "Snapshot exported", "path", path, "rows", len(recs))
	return path, nil
}

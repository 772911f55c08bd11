// Package history persists fused sentiments and recommendations to Postgres.
// Recent scores feed back into the AI fallback prompt as context.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"investment-agent/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS sentiment_history (
	id          BIGSERIAL PRIMARY KEY,
	symbol      TEXT NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	label       TEXT NOT NULL,
	confidence  DOUBLE PRECISION NOT NULL,
	used_fallback BOOLEAN NOT NULL,
	sources     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_sentiment_history_symbol_created
	ON sentiment_history (symbol, created_at DESC);

CREATE TABLE IF NOT EXISTS recommendation_history (
	id              BIGSERIAL PRIMARY KEY,
	symbol          TEXT NOT NULL,
	action          TEXT NOT NULL,
	composite_score DOUBLE PRECISION NOT NULL,
	price           DOUBLE PRECISION NOT NULL,
	commentary      TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_recommendation_history_symbol_created
	ON recommendation_history (symbol, created_at DESC);
`

// Store wraps the Postgres connection.
type Store struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// Open connects to Postgres and applies the schema.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: connect: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}

	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// SaveSentiment records one fused sentiment.
func (s *Store) SaveSentiment(ctx context.Context, u types.UnifiedSentiment) error {
	sourcesJSON, err := json.Marshal(u.ContributingSources)
	if err != nil {
		return fmt.Errorf("history: marshal sources: %w", err)
	}

	query, args, err := s.sb.
		Insert("sentiment_history").
		Columns("symbol", "score", "label", "confidence", "used_fallback", "sources", "created_at").
		Values(u.Symbol, u.Score, string(u.Label), u.Confidence, u.UsedFallback, sourcesJSON, time.Unix(u.Timestamp, 0)).
		ToSql()
	if err != nil {
		return fmt.Errorf("history: build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("history: insert sentiment for %s: %w", u.Symbol, err)
	}
	return nil
}

// SaveRecommendation records one recommendation.
func (s *Store) SaveRecommendation(ctx context.Context, rec types.Recommendation) error {
	query, args, err := s.sb.
		Insert("recommendation_history").
		Columns("symbol", "action", "composite_score", "price", "commentary", "created_at").
		Values(rec.Symbol, rec.Action, rec.CompositeScore, rec.Price, rec.Commentary, time.Unix(rec.Time, 0)).
		ToSql()
	if err != nil {
		return fmt.Errorf("history: build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("history: insert recommendation for %s: %w", rec.Symbol, err)
	}
	return nil
}

// RecentScores returns up to limit fused scores for symbol, newest first.
func (s *Store) RecentScores(ctx context.Context, symbol string, limit int) ([]float64, error) {
	query, args, err := s.sb.
		Select("score").
		From("sentiment_history").
		Where(sq.Eq{"symbol": symbol}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("history: build select: %w", err)
	}

	var scores []float64
	if err := s.db.SelectContext(ctx, &scores, query, args...); err != nil {
		return nil, fmt.Errorf("history: select recent scores for %s: %w", symbol, err)
	}
	return scores, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/blogrank/pkg/rank"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Analysis is one persisted competitive analysis.
type Analysis struct {
	ID          string    `db:"id" json:"id"`
	BlogID      string    `db:"blog_id" json:"blog_id"`
	Keyword     string    `db:"keyword" json:"keyword"`
	Probability int       `db:"probability" json:"probability"` // mid estimate
	RankBest    int       `db:"rank_best" json:"rank_best"`
	RankWorst   int       `db:"rank_worst" json:"rank_worst"`
	Difficulty  string    `db:"difficulty" json:"difficulty"`
	ResultJSON  string    `db:"result" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	Result *rank.CompetitiveAnalysisResult `db:"-" json:"result,omitempty"`
}

// ScoreSnapshot is a point-in-time composite score for a blog.
type ScoreSnapshot struct {
	ID         int64     `db:"id" json:"id"`
	BlogID     string    `db:"blog_id" json:"blog_id"`
	TotalScore float64   `db:"total_score" json:"total_score"`
	Level      int       `db:"level" json:"level"`
	Grade      string    `db:"grade" json:"grade"`
	CheckedAt  time.Time `db:"checked_at" json:"checked_at"`
}

// AnalysisListOpts controls analysis listing.
type AnalysisListOpts struct {
	BlogID  string
	Keyword string
	Since   time.Time
	Limit   int
}

// Store is the persistence interface.
type Store interface {
	SaveAnalysis(ctx context.Context, blogID, keyword string, result *rank.CompetitiveAnalysisResult) (*Analysis, error)
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	ListAnalyses(ctx context.Context, opts AnalysisListOpts) ([]Analysis, error)

	AddScoreSnapshot(ctx context.Context, blogID string, score rank.CompositeScoreResult) error
	GetScoreHistory(ctx context.Context, blogID string, since time.Time) ([]ScoreSnapshot, error)

	SaveWeightSet(ctx context.Context, ws *rank.WeightSet, trainedAt time.Time, activate bool) error
	ActiveWeightSet(ctx context.Context) (*rank.WeightSet, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, blogID, keyword string, result *rank.CompetitiveAnalysisResult) (*Analysis, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}

	a := &Analysis{
		ID:          uuid.NewString(),
		BlogID:      blogID,
		Keyword:     keyword,
		Probability: result.Position.ProbabilityMid,
		RankBest:    result.Position.RankBest,
		RankWorst:   result.Position.RankWorst,
		Difficulty:  string(result.Difficulty.Difficulty),
		ResultJSON:  string(payload),
		CreatedAt:   time.Now().UTC(),
		Result:      result,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, blog_id, keyword, probability, rank_best, rank_worst, difficulty, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.BlogID, a.Keyword, a.Probability, a.RankBest, a.RankWorst, a.Difficulty, a.ResultJSON, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert analysis %s/%s: %w", blogID, keyword, err)
	}
	return a, nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	var a Analysis
	err := s.db.GetContext(ctx, &a, "SELECT * FROM analyses WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(a.ResultJSON), &a.Result); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, opts AnalysisListOpts) ([]Analysis, error) {
	query := "SELECT * FROM analyses WHERE 1=1"
	var args []any

	if opts.BlogID != "" {
		query += " AND blog_id = ?"
		args = append(args, opts.BlogID)
	}
	if opts.Keyword != "" {
		query += " AND keyword = ?"
		args = append(args, opts.Keyword)
	}
	if !opts.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, opts.Since)
	}

	query += " ORDER BY created_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var analyses []Analysis
	if err := s.db.SelectContext(ctx, &analyses, query, args...); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return analyses, nil
}

func (s *SQLiteStore) AddScoreSnapshot(ctx context.Context, blogID string, score rank.CompositeScoreResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_history (blog_id, total_score, level, grade, checked_at)
		VALUES (?, ?, ?, ?, ?)
	`, blogID, score.TotalScore, score.Level, score.Grade, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add score snapshot %s: %w", blogID, err)
	}
	return nil
}

func (s *SQLiteStore) GetScoreHistory(ctx context.Context, blogID string, since time.Time) ([]ScoreSnapshot, error) {
	query := "SELECT * FROM score_history WHERE blog_id = ?"
	args := []any{blogID}
	if !since.IsZero() {
		query += " AND checked_at >= ?"
		args = append(args, since)
	}
	query += " ORDER BY checked_at ASC"

	var snaps []ScoreSnapshot
	if err := s.db.SelectContext(ctx, &snaps, query, args...); err != nil {
		return nil, fmt.Errorf("get score history %s: %w", blogID, err)
	}
	return snaps, nil
}

// SaveWeightSet stores a trained weight set. With activate it also becomes
// the set ActiveWeightSet returns; the previous active set is retired in
// the same transaction so readers never see two active sets.
func (s *SQLiteStore) SaveWeightSet(ctx context.Context, ws *rank.WeightSet, trainedAt time.Time, activate bool) error {
	payload, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("marshal weight set: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin weight set tx: %w", err)
	}
	defer tx.Rollback()

	if activate {
		if _, err := tx.ExecContext(ctx, "UPDATE weight_sets SET active = 0 WHERE active = 1"); err != nil {
			return fmt.Errorf("retire weight sets: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO weight_sets (payload, trained_at, active) VALUES (?, ?, ?)
	`, string(payload), trainedAt.UTC(), activate); err != nil {
		return fmt.Errorf("insert weight set: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ActiveWeightSet(ctx context.Context) (*rank.WeightSet, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		"SELECT payload FROM weight_sets WHERE active = 1 ORDER BY trained_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active weight set: %w", err)
	}

	var ws rank.WeightSet
	if err := json.Unmarshal([]byte(payload), &ws); err != nil {
		return nil, fmt.Errorf("decode weight set: %w", err)
	}
	return &ws, nil
}

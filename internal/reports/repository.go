// Package reports stores scored reports in Postgres.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/finscope/finscope/pkg/scoring"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = eris.New("reports: not found")

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Summary is one row of a ticker's report history.
type Summary struct {
	ID              string                 `json:"id"`
	Ticker          string                 `json:"ticker"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Recommendation  scoring.Recommendation `json:"recommendation"`
	FinancialHealth *float64               `json:"financial_health,omitempty"`
	Buffett         *float64               `json:"buffett,omitempty"`
	Lynch           *float64               `json:"lynch,omitempty"`
}

// Repository reads and writes the reports table.
type Repository struct {
	db Querier
}

// NewRepository creates a Repository over a pgx pool or connection.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

const insertSQL = `INSERT INTO reports
	(id, ticker, generated_at, recommendation, financial_health, buffett, lynch, report)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Insert stores a report, assigning an ID when it has none.
func (r *Repository) Insert(ctx context.Context, report *scoring.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	body, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "reports: marshal")
	}

	_, err = r.db.Exec(ctx, insertSQL,
		report.ID,
		report.Ticker,
		report.GeneratedAt,
		string(report.Recommendation),
		modelScore(report, scoring.ModelFinancialHealth),
		modelScore(report, scoring.ModelBuffett),
		modelScore(report, scoring.ModelLynch),
		body,
	)
	if err != nil {
		return eris.Wrapf(err, "reports: insert %s", report.ID)
	}
	return nil
}

// Get returns the full report with the given ID.
func (r *Repository) Get(ctx context.Context, id string) (*scoring.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, eris.Wrapf(ErrNotFound, "invalid id %q", id)
	}

	var body []byte
	err := r.db.QueryRow(ctx, `SELECT report FROM reports WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "reports: get %s", id)
	}

	var report scoring.Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, eris.Wrapf(err, "reports: decode %s", id)
	}
	return &report, nil
}

const listSQL = `SELECT id::text, ticker, generated_at, recommendation, financial_health, buffett, lynch
	FROM reports
	WHERE ticker = $1
	ORDER BY generated_at DESC
	LIMIT $2`

// ListByTicker returns the newest reports for a ticker, newest first.
func (r *Repository) ListByTicker(ctx context.Context, ticker string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, listSQL, ticker, limit)
	if err != nil {
		return nil, eris.Wrapf(err, "reports: list %s", ticker)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var rec string
		if err := rows.Scan(&s.ID, &s.Ticker, &s.GeneratedAt, &rec, &s.FinancialHealth, &s.Buffett, &s.Lynch); err != nil {
			return nil, eris.Wrap(err, "reports: scan")
		}
		s.Recommendation = scoring.Recommendation(rec)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "reports: rows")
	}
	return out, nil
}

func modelScore(report *scoring.Report, key string) *float64 {
	m, ok := report.Model(key)
	if !ok {
		return nil
	}
	score := m.Score
	return &score
}

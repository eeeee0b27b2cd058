package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finscope/finscope/pkg/scoring"
)

func sampleReport() *scoring.Report {
	return &scoring.Report{
		Ticker:         "ACME",
		GeneratedAt:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Recommendation: scoring.RecommendHold,
		Models: []scoring.ModelResult{
			{Model: scoring.ModelFinancialHealth, Name: "Financial Health", Score: 6.5},
			{Model: scoring.ModelLynch, Name: "Lynch", Score: 7.6},
		},
	}
}

func TestRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	report := sampleReport()
	fh, lynch := 6.5, 7.6

	mock.ExpectExec("INSERT INTO reports").
		WithArgs(pgxmock.AnyArg(), "ACME", report.GeneratedAt, "HOLD", &fh, (*float64)(nil), &lynch, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	require.NoError(t, repo.Insert(context.Background(), report))

	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err, "insert assigns a uuid")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO reports").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err = NewRepository(mock).Insert(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	report := sampleReport()
	report.ID = uuid.NewString()
	body, err := json.Marshal(report)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT report FROM reports").
		WithArgs(report.ID).
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(body))

	got, err := NewRepository(mock).Get(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, scoring.RecommendHold, got.Recommendation)
	require.Len(t, got.Models, 2)
	assert.Equal(t, 7.6, got.Models[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.NewString()
	mock.ExpectQuery("SELECT report FROM reports").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRepository(mock)
	_, err = repo.Get(context.Background(), id)
	assert.True(t, errors.Is(err, ErrNotFound))

	// malformed ids never reach the database
	_, err = repo.Get(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByTicker(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	older := newer.AddDate(0, -3, 0)
	fh, buffett := 6.5, 9.375

	mock.ExpectQuery("SELECT id::text, ticker").
		WithArgs("ACME", 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "ticker", "generated_at", "recommendation", "financial_health", "buffett", "lynch"}).
			AddRow("a", "ACME", newer, "HOLD", &fh, &buffett, (*float64)(nil)).
			AddRow("b", "ACME", older, "SELL", (*float64)(nil), (*float64)(nil), (*float64)(nil)))

	got, err := NewRepository(mock).ListByTicker(context.Background(), "ACME", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, scoring.RecommendHold, got[0].Recommendation)
	require.NotNil(t, got[0].FinancialHealth)
	assert.Equal(t, 6.5, *got[0].FinancialHealth)
	assert.Nil(t, got[0].Lynch)
	assert.Equal(t, scoring.RecommendSell, got[1].Recommendation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

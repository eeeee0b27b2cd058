package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finscope/finscope/internal/store"
	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/statement"
)

func TestArchiveSaveLoad(t *testing.T) {
	ctx := context.Background()
	archive := store.NewArchive(store.NewLocalStorage(t.TempDir()))

	bundle, err := statement.LoadFile("../../testdata/acme.json")
	require.NoError(t, err)

	engine := scoring.NewEngine(scoring.DefaultModels(scoring.Defaults())...).
		WithClock(func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) })
	report, err := engine.Score(bundle)
	require.NoError(t, err)

	id, err := archive.SaveReport(ctx, report, bundle)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, report.ID)

	loaded, err := archive.LoadReport(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, report.Ticker, loaded.Ticker)
	assert.Equal(t, report.Recommendation, loaded.Recommendation)
	require.Len(t, loaded.Models, len(report.Models))
	for i := range report.Models {
		assert.InDelta(t, report.Models[i].Score, loaded.Models[i].Score, 1e-9)
		assert.Equal(t, report.Models[i].Breakdown.Names(), loaded.Models[i].Breakdown.Names())
	}

	b, err := archive.LoadBundle(ctx, report.Ticker, id)
	require.NoError(t, err)
	assert.Equal(t, bundle.IncomeStatement.Len(), b.IncomeStatement.Len())
}

func TestArchiveKeepsExistingID(t *testing.T) {
	archive := store.NewArchive(store.NewLocalStorage(t.TempDir()))
	id := uuid.NewString()

	got, err := archive.SaveReport(context.Background(), &scoring.Report{ID: id, Ticker: "X"}, nil)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestArchiveLoadMissing(t *testing.T) {
	archive := store.NewArchive(store.NewLocalStorage(t.TempDir()))

	_, err := archive.LoadReport(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = archive.LoadReport(context.Background(), "../../etc/passwd")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestArchiveRejectsUnsafeTicker(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "a", "b", "reports")
	archive := store.NewArchive(store.NewLocalStorage(base))

	report := &scoring.Report{Ticker: "../../../ESCAPED"}
	bundle := &statement.Statements{Ticker: report.Ticker}
	_, err := archive.SaveReport(context.Background(), report, bundle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, statement.ErrInvalidTicker))

	_, err = os.Stat(filepath.Join(root, "ESCAPED"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(base)
	assert.True(t, os.IsNotExist(err), "nothing should be written")

	_, err = archive.LoadBundle(context.Background(), "../ACME", uuid.NewString())
	assert.True(t, errors.Is(err, statement.ErrInvalidTicker))
}

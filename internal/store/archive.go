package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/finscope/finscope/pkg/scoring"
	"github.com/finscope/finscope/pkg/statement"
)

// Archive saves reports next to the bundles they were scored from.
type Archive struct {
	client StorageClient
}

// NewArchive wraps a StorageClient.
func NewArchive(client StorageClient) *Archive {
	return &Archive{client: client}
}

// SaveReport assigns the report an ID when it has none, then stores the
// report and, when given, its input bundle under the same ID.
func (a *Archive) SaveReport(ctx context.Context, report *scoring.Report, bundle *statement.Statements) (string, error) {
	if err := statement.CheckTicker(report.Ticker); err != nil {
		return "", eris.Wrap(err, "save report")
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	if bundle != nil {
		data, err := json.Marshal(bundle)
		if err != nil {
			return "", eris.Wrap(err, "marshal bundle")
		}
		if err := a.client.PutBundle(ctx, report.Ticker, report.ID, data); err != nil {
			return "", eris.Wrap(err, "put bundle")
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "marshal report")
	}
	if err := a.client.PutReport(ctx, report.ID, data); err != nil {
		return "", eris.Wrap(err, "put report")
	}
	return report.ID, nil
}

// LoadReport reads a report by ID.
func (a *Archive) LoadReport(ctx context.Context, id string) (*scoring.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, eris.Wrapf(ErrNotFound, "invalid report id %q", id)
	}
	data, err := a.client.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	var r scoring.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "decode report %s", id)
	}
	return &r, nil
}

// LoadBundle reads the bundle a report was scored from.
func (a *Archive) LoadBundle(ctx context.Context, ticker, id string) (*statement.Statements, error) {
	if err := statement.CheckTicker(ticker); err != nil {
		return nil, eris.Wrap(err, "load bundle")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, eris.Wrapf(ErrNotFound, "invalid report id %q", id)
	}
	data, err := a.client.GetBundle(ctx, ticker, id)
	if err != nil {
		return nil, err
	}
	var s statement.Statements
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(err, "decode bundle %s", id)
	}
	return &s, nil
}

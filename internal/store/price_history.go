package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"shopping.app/pricewatch/core/db/sqlc"
	"shopping.app/pricewatch/internal/model"
)

type priceHistoryStore struct {
	queries *sqlc.Queries
}

func newPriceHistoryStore(queries *sqlc.Queries) PriceHistoryStore {
	return &priceHistoryStore{queries: queries}
}

func (s *priceHistoryStore) Append(ctx context.Context, record *model.HistoryRecord) (*model.HistoryRecord, bool, error) {
	row, err := s.queries.InsertPriceHistory(ctx, sqlc.InsertPriceHistoryParams{
		ProductID:         record.ProductID,
		SequenceKey:       record.SequenceKey,
		DedupeKey:         record.DedupeKey,
		ProductName:       record.ProductName,
		OldPrice:          record.OldPrice,
		NewPrice:          record.NewPrice,
		ChangeAmount:      record.ChangeAmount,
		ChangePercentage:  record.ChangePercentage,
		PercentageDefined: record.PercentageDefined,
		UpdatedBy:         record.UpdatedBy,
		ChangeTime:        pgtype.Timestamptz{Time: record.ChangeTime, Valid: true},
	})
	if err == nil {
		return toHistoryModel(row), true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// ON CONFLICT DO NOTHING returns no row: this change was stored earlier.
	existing, err := s.queries.GetPriceHistoryByDedupeKey(ctx, record.DedupeKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}
	return toHistoryModel(existing), false, nil
}

func (s *priceHistoryStore) ListByProduct(ctx context.Context, productID string, limit int32) ([]model.HistoryRecord, error) {
	rows, err := s.queries.ListPriceHistoryByProduct(ctx, sqlc.ListPriceHistoryByProductParams{
		ProductID: productID,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	result := make([]model.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, *toHistoryModel(row))
	}
	return result, nil
}

func toHistoryModel(row sqlc.PriceHistory) *model.HistoryRecord {
	return &model.HistoryRecord{
		ProductID:         row.ProductID,
		SequenceKey:       row.SequenceKey,
		DedupeKey:         row.DedupeKey,
		ProductName:       row.ProductName,
		OldPrice:          row.OldPrice,
		NewPrice:          row.NewPrice,
		ChangeAmount:      row.ChangeAmount,
		ChangePercentage:  row.ChangePercentage,
		PercentageDefined: row.PercentageDefined,
		UpdatedBy:         row.UpdatedBy,
		ChangeTime:        row.ChangeTime.Time,
		CreatedAt:         row.CreatedAt.Time,
	}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// DividendStore implements storage.DividendStore using PostgreSQL.
// Amounts are bound and scanned as text to keep NUMERIC exact.
type DividendStore struct {
	pool *Pool
}

// NewDividendStore creates a new DividendStore.
func NewDividendStore(pool *Pool) *DividendStore {
	return &DividendStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DividendStore = (*DividendStore)(nil)

const dividendUpsertQuery = `
	INSERT INTO dividends (
		symbol, ex_date, pay_date, amount, raw_amount,
		frequency, provenance, review_note, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (symbol, ex_date) DO UPDATE SET
		pay_date    = EXCLUDED.pay_date,
		amount      = EXCLUDED.amount,
		raw_amount  = EXCLUDED.raw_amount,
		frequency   = EXCLUDED.frequency,
		provenance  = EXCLUDED.provenance,
		review_note = EXCLUDED.review_note,
		updated_at  = EXCLUDED.updated_at
`

// Upsert inserts the record or overwrites the row for (symbol, ex_date).
func (s *DividendStore) Upsert(ctx context.Context, d *domain.DividendRecord) error {
	if d == nil || d.Symbol == "" || d.ExDate == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, dividendUpsertQuery, dividendArgs(d)...)
	if err != nil {
		return fmt.Errorf("upsert dividend: %w", err)
	}
	return nil
}

// UpsertBulk upserts all records in a single round trip via pgx batching.
func (s *DividendStore) UpsertBulk(ctx context.Context, records []*domain.DividendRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, d := range records {
		if d == nil || d.Symbol == "" || d.ExDate == "" {
			return storage.ErrInvalidInput
		}
		batch.Queue(dividendUpsertQuery, dividendArgs(d)...)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert dividend batch: %w", err)
		}
	}
	return nil
}

// GetBySymbol retrieves all records for a symbol, ordered by ex_date ASC.
func (s *DividendStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.DividendRecord, error) {
	query := `
		SELECT symbol, ex_date, pay_date, amount::text, raw_amount::text,
		       frequency, provenance, review_note, updated_at
		FROM dividends
		WHERE symbol = $1
		ORDER BY ex_date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get dividends by symbol: %w", err)
	}
	defer rows.Close()

	var records []*domain.DividendRecord
	for rows.Next() {
		var d domain.DividendRecord
		var amountStr, rawAmountStr, frequencyStr, provenanceStr string

		err := rows.Scan(
			&d.Symbol,
			&d.ExDate,
			&d.PayDate,
			&amountStr,
			&rawAmountStr,
			&frequencyStr,
			&provenanceStr,
			&d.ReviewNote,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dividend row: %w", err)
		}

		if d.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("parse dividend amount %q: %w", amountStr, err)
		}
		if d.RawAmount, err = decimal.NewFromString(rawAmountStr); err != nil {
			return nil, fmt.Errorf("parse dividend raw amount %q: %w", rawAmountStr, err)
		}
		d.Frequency = domain.Frequency(frequencyStr)
		d.Provenance = domain.Provenance(provenanceStr)
		records = append(records, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dividend rows: %w", err)
	}

	return records, nil
}

// dividendArgs binds a record to the upsert parameter list.
func dividendArgs(d *domain.DividendRecord) []any {
	return []any{
		d.Symbol,
		d.ExDate,
		d.PayDate,
		d.Amount.String(),
		d.RawAmount.String(),
		string(d.Frequency),
		string(d.Provenance),
		d.ReviewNote,
		d.UpdatedAt,
	}
}

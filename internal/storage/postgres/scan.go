package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// scanSymbols collects a single-column symbol result set.
func scanSymbols(rows pgx.Rows) ([]string, error) {
	var symbols []string

	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol row: %w", err)
		}
		symbols = append(symbols, sym)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbol rows: %w", err)
	}

	return symbols, nil
}

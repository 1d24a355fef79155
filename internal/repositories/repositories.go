package repositories

import (
	"database/sql"
	"fmt"
)

// affected returns the number of rows touched by result.
func affected(result sql.Result) (int, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

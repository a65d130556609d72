package db

import (
	"database/sql"
)

// NullToInt convierte sql.NullInt64 a int (0 si es nulo)
func NullToInt(ni sql.NullInt64) int {
	if ni.Valid {
		return int(ni.Int64)
	}
	return 0
}

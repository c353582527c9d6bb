package postgres

import (
	"database/sql/driver"
	"strings"

	"github.com/google/uuid"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// uuidArray encodes ids as a PostgreSQL array literal, for use with
// "= ANY($1::uuid[])".
type uuidArray []uuid.UUID

// Value implements driver.Valuer.
func (a uuidArray) Value() (driver.Value, error) {
	parts := make([]string, len(a))
	for i, id := range a {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Sentinel errors shared by the repository layer. Handlers and services
// discriminate on these with errors.Is instead of inspecting driver messages.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate record")
	ErrUnavailable = errors.New("storage unavailable")
)

// Postgres error classes/codes relevant to this service.
const (
	pqUniqueViolation     = "23505"
	pqConnectionException = "08" // class: connection exceptions
)

// Classify maps a driver-level error onto one of the sentinel errors above,
// keeping the original message for logs. Unknown errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case string(pqErr.Code) == pqUniqueViolation:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case string(pqErr.Code.Class()) == pqConnectionException:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}

package sqlxrepos

import (
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// trapNoRows maps "no rows" to notFound and wraps anything else with msg.
func trapNoRows(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func columns(prefix string, cols []string) string {
	if prefix == "" {
		return strings.Join(cols, ", ")
	}
	prefixed := make([]string, 0, len(cols))
	for _, c := range cols {
		prefixed = append(prefixed, prefix+"."+c)
	}
	return strings.Join(prefixed, ", ")
}

package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailAlreadyExists is returned when a customer insert hits the unique email index.
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// psql builds statements with postgres style placeholders. uuid.UUID is a byte
// array, which squirrel.Eq would expand into a list, so ids are always bound
// through plain predicates such as Where("id = ?", id).
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns an ILIKE pattern matching s anywhere in the column.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func paginate(b squirrel.SelectBuilder, limit, offset uint64) squirrel.SelectBuilder {
	if limit > 0 {
		b = b.Limit(limit)
	}
	if offset > 0 {
		b = b.Offset(offset)
	}
	return b
}

func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan numeric %s: %w", d, err)
	}
	return n, nil
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, fmt.Errorf("numeric is not finite")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

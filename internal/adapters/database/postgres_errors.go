package database

import (
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}

// applyPage adds ORDER BY, LIMIT and OFFSET to ds. Sort keys are resolved
// through columns; unknown keys are ignored and fallback orders the rest.
func applyPage(ds *goqu.SelectDataset, page entities.PageRequest, columns map[string]string, fallback ...exp.OrderedExpression) *goqu.SelectDataset {
	orders := make([]exp.OrderedExpression, 0, len(page.Sort)+len(fallback))
	for _, s := range page.Sort {
		column, ok := columns[s.Field]
		if !ok {
			continue
		}
		if s.Desc {
			orders = append(orders, goqu.I(column).Desc())
		} else {
			orders = append(orders, goqu.I(column).Asc())
		}
	}
	orders = append(orders, fallback...)
	if len(orders) > 0 {
		ds = ds.Order(orders...)
	}

	if page.Limit > 0 {
		ds = ds.Limit(uint(page.Limit))
	}
	if page.Offset > 0 {
		ds = ds.Offset(uint(page.Offset))
	}
	return ds
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, lower-cased
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

package boiledrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/drivers"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/strmangle"

	"github.com/aykutjm/ogrencim/core"
)

var dialect = drivers.Dialect{
	LQ:                   '"',
	RQ:                   '"',
	UseIndexPlaceholders: true,
	UseDefaultKeyword:    true,
}

// repository holds the executor used when a service does not pass its own (transaction).
type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// newQuery builds a postgres query from mods.
func newQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &dialect)
	qm.Apply(q, mods...)
	return q
}

// countQuery scans the number of rows matching mods into count.
func countQuery(ctx context.Context, exec core.DBExecutor, count *int64, mods ...qm.QueryMod) error {
	q := newQuery(mods...)
	queries.SetCount(q)
	return q.QueryRowContext(ctx, exec).Scan(count)
}

// deleteWhere deletes the rows of table matching mods and returns their number.
func deleteWhere(ctx context.Context, exec core.DBExecutor, table string, mods ...qm.QueryMod) (int64, error) {
	q := newQuery(append([]qm.QueryMod{qm.From(quote(table))}, mods...)...)
	queries.SetDelete(q)
	res, err := q.ExecContext(ctx, exec)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func quote(ident string) string {
	return strmangle.IdentQuote(dialect.LQ, dialect.RQ, ident)
}

// insertQuery returns a multi-row INSERT of n rows into table.
func insertQuery(table string, cols []string, n int) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		quote(table),
		strings.Join(strmangle.IdentQuoteSlice(dialect.LQ, dialect.RQ, cols), ","),
		strmangle.Placeholders(dialect.UseIndexPlaceholders, n*len(cols), 1, len(cols)),
	)
}

// updateQuery returns an UPDATE of cols of the row of table identified by its id (last arg).
func updateQuery(table string, cols []string) string {
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		quote(table),
		strmangle.SetParamNames(`"`, `"`, 1, cols),
		strmangle.WhereClause(`"`, `"`, len(cols)+1, []string{"id"}),
	)
}

func deleteQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", quote(table), strmangle.WhereClause(`"`, `"`, 1, []string{"id"}))
}

// execOne runs a statement that must affect exactly one row, notFound otherwise.
func execOne(ctx context.Context, exec core.DBExecutor, notFound error, query string, args ...interface{}) error {
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// trapNoRowsErr maps "no rows" errors to notFound.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == "23505"
}

// searchPattern returns an ILIKE pattern matching values containing s.
func searchPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func nullTime(t time.Time) null.Time {
	return null.NewTime(t.UTC(), !t.IsZero())
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return args
}

package sqlxrepos

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/trezcool/bulletin/core"
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func pqCode(err error) string {
	if pqErr, ok := err.(*pq.Error); ok {
		return string(pqErr.Code)
	}
	return ""
}

// where accumulates AND-ed conditions written with `?` placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders an ORDER BY clause, prefixing every column with `alias` when set.
func orderBy(alias string, ordering []core.DBOrdering, fallback ...core.DBOrdering) string {
	all := append(append(make([]core.DBOrdering, 0, len(ordering)+len(fallback)), ordering...), fallback...)
	if len(all) == 0 {
		return ""
	}
	if alias != "" {
		for i := range all {
			all[i].Field = alias + "." + all[i].Field
		}
	}
	return " ORDER BY " + core.JoinOrderings(all)
}

package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/bulletin/core"
)

const orderingParam = "ordering"

// bindOrdering reads `?ordering=name,-created_at` (possibly repeated) into orderings.
// A leading "-" sorts descending. Blank and repeated fields are skipped: the first occurrence wins.
// Unknown fields are left to core.CleanOrderings.
func bindOrdering(ctx echo.Context) []core.DBOrdering {
	var orderings []core.DBOrdering
	seen := make(map[string]bool)

	for _, val := range ctx.QueryParams()[orderingParam] {
		for _, field := range strings.Split(val, ",") {
			field = strings.ToLower(strings.TrimSpace(field))
			descending := strings.HasPrefix(field, "-")
			field = strings.TrimPrefix(field, "-")
			if field == "" || seen[field] {
				continue
			}
			seen[field] = true
			orderings = append(orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
	return orderings
}

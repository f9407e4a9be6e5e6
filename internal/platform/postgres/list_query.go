package postgres

import (
	"fmt"
	"strings"

	"github.com/phrazzld/todo-api/internal/store"
)

// buildListTasksQuery composes the filtered, sorted, keyset-paginated list
// query. Params must already be normalized.
//
// The wire cursor is always the id of the last row of the previous page.
// In id order that translates directly into an `id > cursor` seek. With a
// non-default sort field the query resolves the cursor row's sort key in a
// subquery and seeks on the compound (sort key, id) row value, so pages stay
// correct when sort keys tie. The cursor row always exists because tasks are
// never hard-deleted.
func buildListTasksQuery(userID int64, p store.ListTasksParams) (string, []any) {
	var sb strings.Builder
	args := []any{userID}

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)

	if !p.IncludeDeleted {
		sb.WriteString(" AND deleted_at IS NULL")
	}
	if p.Status != nil {
		args = append(args, int(*p.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if p.Priority != nil {
		args = append(args, int(*p.Priority))
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}
	if p.Search != "" {
		args = append(args, "%"+escapeLike(p.Search)+"%")
		fmt.Fprintf(&sb, " AND title ILIKE $%d", len(args))
	}

	cmp, ord := ">", "ASC"
	if p.SortOrder == store.SortDesc {
		cmp, ord = "<", "DESC"
	}

	sortExpr := sortExpression(p.SortColumn())

	if p.Cursor != nil {
		args = append(args, *p.Cursor)
		n := len(args)
		if sortExpr == "" {
			fmt.Fprintf(&sb, " AND id %s $%d", cmp, n)
		} else {
			fmt.Fprintf(&sb, " AND (%s, id) %s (SELECT %s, id FROM tasks WHERE id = $%d)",
				sortExpr, cmp, sortExpr, n)
		}
	}

	if sortExpr == "" {
		fmt.Fprintf(&sb, " ORDER BY id %s", ord)
	} else {
		fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", sortExpr, ord, ord)
	}

	args = append(args, p.Limit+1)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	return sb.String(), args
}

// sortExpression returns the ORDER BY / seek expression for a sort column.
// due_date is nullable; NULLs are coalesced to +infinity so that row-value
// comparison and ordering agree (undated tasks sort last ascending).
func sortExpression(column string) string {
	if column == "" {
		return ""
	}
	if column == "due_date" {
		return "COALESCE(due_date, 'infinity'::timestamptz)"
	}
	return column
}

// escapeLike escapes the LIKE metacharacters in a user-supplied search term
// so it matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

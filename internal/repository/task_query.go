package repository

import (
	"strings"

	"task-tracker/internal/model"
)

const taskColumns = `id, user_id, category_id, name, description, creation_date, due_date, completion_date`

// TaskQuery narrows a task listing. Zero values apply no constraint.
type TaskQuery struct {
	CategoryID *uint
	Filter     model.TaskFilter
	Horizon    model.TimeHorizon
}

// buildTaskQuery composes the owner-scoped listing statement. Clauses are appended in a fixed
// order and args bind in the same order; empty predicates are skipped.
func buildTaskQuery(userID string, q TaskQuery) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`)
	args := []any{userID}

	if q.CategoryID != nil {
		sb.WriteString(` AND category_id = ?`)
		args = append(args, *q.CategoryID)
	}
	if p := q.Filter.Predicate(); p != "" {
		sb.WriteString(` AND (` + p + `)`)
	}
	if p := q.Horizon.Predicate(); p != "" {
		sb.WriteString(` AND (` + p + `)`)
	}

	sb.WriteString(` ORDER BY due_date ASC NULLS LAST, id ASC`)
	return sb.String(), args
}

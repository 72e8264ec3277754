package model

import (
	"strconv"
	"strings"
)

// TaskFilter selects tasks by completion state and due date.
type TaskFilter string

const (
	FilterAll        TaskFilter = "all"
	FilterComplete   TaskFilter = "complete"
	FilterIncomplete TaskFilter = "incomplete"
	// FilterOverdue matches tasks that were already due but are not completed.
	FilterOverdue TaskFilter = "overdue"
	// FilterUpcoming matches incomplete tasks due now or later.
	FilterUpcoming TaskFilter = "upcoming"
)

// ParseTaskFilter never fails: unknown or empty input is FilterAll.
func ParseTaskFilter(raw string) TaskFilter {
	switch f := TaskFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case FilterComplete, FilterIncomplete, FilterOverdue, FilterUpcoming:
		return f
	default:
		return FilterAll
	}
}

func (f TaskFilter) String() string {
	return string(f)
}

// Predicate returns the SQL condition for the filter, or "" when nothing is filtered.
func (f TaskFilter) Predicate() string {
	switch f {
	case FilterComplete:
		return "completion_date IS NOT NULL"
	case FilterIncomplete:
		return "completion_date IS NULL"
	case FilterOverdue:
		return "datetime(due_date) < datetime('now') AND completion_date IS NULL"
	case FilterUpcoming:
		return "datetime(due_date) >= datetime('now') AND completion_date IS NULL"
	default:
		return ""
	}
}

// TimeHorizon limits how far ahead a task may be due.
type TimeHorizon string

const (
	HorizonAll   TimeHorizon = "all"
	HorizonDay   TimeHorizon = "day"
	HorizonWeek  TimeHorizon = "week"
	HorizonMonth TimeHorizon = "month"
)

// ParseTimeHorizon never fails: unknown or empty input is HorizonAll.
func ParseTimeHorizon(raw string) TimeHorizon {
	switch h := TimeHorizon(strings.ToLower(strings.TrimSpace(raw))); h {
	case HorizonDay, HorizonWeek, HorizonMonth:
		return h
	default:
		return HorizonAll
	}
}

func (h TimeHorizon) String() string {
	return string(h)
}

// Predicate is an upper cutoff on the due date. Tasks without a due date never match,
// overdue tasks always do.
func (h TimeHorizon) Predicate() string {
	switch h {
	case HorizonDay:
		return "datetime(due_date) < datetime('now', '+1 day')"
	case HorizonWeek:
		return "datetime(due_date) < datetime('now', '+7 days')"
	case HorizonMonth:
		return "datetime(due_date) < datetime('now', '+1 month')"
	default:
		return ""
	}
}

// ParseCategoryID returns nil unless raw is a positive decimal integer.
func ParseCategoryID(raw string) *uint {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, strconv.IntSize)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

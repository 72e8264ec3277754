package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"task-tracker/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log, _ := test.NewNullLogger()
	store, err := Open(DriverSQLite, ":memory:", log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func ptr[T any](v T) *T { return &v }

var (
	allFilters  = []model.TaskFilter{model.FilterAll, model.FilterComplete, model.FilterIncomplete, model.FilterOverdue, model.FilterUpcoming}
	allHorizons = []model.TimeHorizon{model.HorizonAll, model.HorizonDay, model.HorizonWeek, model.HorizonMonth}
)

func TestBuildTaskQuery_EveryCombinationIsValid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, categoryID := range []*uint{nil, ptr(uint(3))} {
		for _, f := range allFilters {
			for _, h := range allHorizons {
				query, args := buildTaskQuery("u-1", TaskQuery{CategoryID: categoryID, Filter: f, Horizon: h})

				if !strings.HasPrefix(query, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ?`) {
					t.Fatalf("unexpected prefix: %s", query)
				}
				if !strings.HasSuffix(query, ` ORDER BY due_date ASC NULLS LAST, id ASC`) {
					t.Fatalf("unexpected suffix: %s", query)
				}
				if strings.Contains(query, "()") || strings.Contains(query, "AND  ") {
					t.Fatalf("empty fragment leaked into query: %s", query)
				}
				if got := strings.Count(query, "?"); got != len(args) {
					t.Fatalf("%d placeholders but %d args: %s", got, len(args), query)
				}
				if args[0] != "u-1" {
					t.Fatalf("first arg must be the owner, got %v", args[0])
				}
				if categoryID != nil {
					if !strings.Contains(query, "AND category_id = ?") || args[1] != uint(3) {
						t.Fatalf("category clause/arg missing: %s %v", query, args)
					}
				} else if strings.Contains(query, "category_id = ?") {
					t.Fatalf("unexpected category clause: %s", query)
				}
				if p := f.Predicate(); p != "" && !strings.Contains(query, p) {
					t.Fatalf("filter %s predicate missing: %s", f, query)
				}
				if p := h.Predicate(); p != "" && !strings.Contains(query, p) {
					t.Fatalf("horizon %s predicate missing: %s", h, query)
				}
				// Category, then filter, then horizon.
				if categoryID != nil && f.Predicate() != "" &&
					strings.Index(query, "category_id = ?") > strings.Index(query, f.Predicate()) {
					t.Fatalf("category clause must precede the filter: %s", query)
				}
				if f.Predicate() != "" && h.Predicate() != "" &&
					strings.Index(query, f.Predicate()) > strings.Index(query, h.Predicate()) {
					t.Fatalf("filter must precede the horizon: %s", query)
				}

				if _, err := store.selectRows(ctx, "combination", query, args...); err != nil {
					t.Fatalf("filter=%s horizon=%s category=%v: %v", f, h, categoryID, err)
				}
			}
		}
	}
}

func TestBuildTaskQuery_NoOptionalClauses(t *testing.T) {
	query, args := buildTaskQuery("u-1", TaskQuery{})
	want := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY due_date ASC NULLS LAST, id ASC`
	if query != want {
		t.Fatalf("query = %q\nwant    %q", query, want)
	}
	if len(args) != 1 {
		t.Fatalf("args = %v", args)
	}
}

func TestStore_CreateAndGetTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	due := time.Date(2024, 5, 3, 18, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	created, err := store.CreateTask(ctx, "u-1", NewTask{
		Name:        "Report",
		CategoryID:  ptr(uint(1)),
		Description: ptr("Q2"),
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == 0 || created.UserID != "u-1" || created.Name != "Report" {
		t.Fatalf("unexpected task: %+v", created)
	}
	if !created.CreationDate.Equal(fixed) {
		t.Fatalf("creation date = %v, want %v", created.CreationDate, fixed)
	}
	if created.DueDate == nil || !created.DueDate.Equal(due) {
		t.Fatalf("due date = %v, want %v", created.DueDate, due)
	}
	if created.CompletionDate != nil {
		t.Fatalf("new task must be incomplete")
	}

	got, err := store.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.ID != created.ID || *got.CategoryID != 1 || *got.Description != "Q2" {
		t.Fatalf("GetTask mismatch: %+v", got)
	}

	if _, err := store.GetTask(ctx, created.ID+100); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_CreateTask_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateTask(ctx, "u-1", NewTask{Name: "   "}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("empty name: expected ErrValidation, got %v", err)
	}
	if _, err := store.CreateTask(ctx, "", NewTask{Name: "x"}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("empty owner: expected ErrValidation, got %v", err)
	}
}

func TestStore_GetTasks_FiltersHorizonsAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mk := func(name string, due *time.Time, category *uint) *model.Task {
		t.Helper()
		task, err := store.CreateTask(ctx, "u-1", NewTask{Name: name, DueDate: due, CategoryID: category})
		if err != nil {
			t.Fatalf("CreateTask %s: %v", name, err)
		}
		return task
	}
	in := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	mk("overdue", in(-2*time.Hour), nil)
	mk("soon", in(2*time.Hour), ptr(uint(9)))
	mk("this-week", in(3*24*time.Hour), nil)
	mk("this-month", in(20*24*time.Hour), ptr(uint(9)))
	mk("later", in(60*24*time.Hour), nil)
	mk("someday", nil, nil)
	done := mk("done", in(-1*time.Hour), nil)
	if _, err := store.SetTaskCompleted(ctx, "u-1", done.ID, true); err != nil {
		t.Fatalf("SetTaskCompleted: %v", err)
	}
	if _, err := store.CreateTask(ctx, "u-2", NewTask{Name: "foreign"}); err != nil {
		t.Fatalf("CreateTask foreign: %v", err)
	}

	cases := []struct {
		q    TaskQuery
		want []string
	}{
		{TaskQuery{}, []string{"overdue", "done", "soon", "this-week", "this-month", "later", "someday"}},
		{TaskQuery{Filter: model.FilterComplete}, []string{"done"}},
		{TaskQuery{Filter: model.FilterIncomplete}, []string{"overdue", "soon", "this-week", "this-month", "later", "someday"}},
		{TaskQuery{Filter: model.FilterOverdue}, []string{"overdue"}},
		{TaskQuery{Filter: model.FilterUpcoming}, []string{"soon", "this-week", "this-month", "later"}},
		{TaskQuery{Horizon: model.HorizonDay}, []string{"overdue", "done", "soon"}},
		{TaskQuery{Horizon: model.HorizonWeek}, []string{"overdue", "done", "soon", "this-week"}},
		{TaskQuery{Horizon: model.HorizonMonth}, []string{"overdue", "done", "soon", "this-week", "this-month"}},
		{TaskQuery{Filter: model.FilterUpcoming, Horizon: model.HorizonDay}, []string{"soon"}},
		{TaskQuery{Filter: model.FilterOverdue, Horizon: model.HorizonWeek}, []string{"overdue"}},
		{TaskQuery{CategoryID: ptr(uint(9))}, []string{"soon", "this-month"}},
		{TaskQuery{CategoryID: ptr(uint(9)), Filter: model.FilterUpcoming, Horizon: model.HorizonWeek}, []string{"soon"}},
		{TaskQuery{CategoryID: ptr(uint(404))}, nil},
	}
	for _, tc := range cases {
		tasks, err := store.GetTasks(ctx, "u-1", tc.q)
		if err != nil {
			t.Fatalf("GetTasks(%+v): %v", tc.q, err)
		}
		if got := names(tasks); strings.Join(got, ",") != strings.Join(tc.want, ",") {
			t.Fatalf("GetTasks(filter=%s horizon=%s category=%v) = %v, want %v",
				tc.q.Filter, tc.q.Horizon, tc.q.CategoryID, got, tc.want)
		}
	}
}

func TestStore_UpdateTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTask(ctx, "u-1", NewTask{Name: "Draft", Description: ptr("v1")})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	update := *created
	update.Name = "Final"
	update.CategoryID = ptr(uint(2))
	update.Description = nil
	update.DueDate = &due
	update.CreationDate = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	updated, err := store.UpdateTask(ctx, update)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Name != "Final" || *updated.CategoryID != 2 || updated.Description != nil || !updated.DueDate.Equal(due) {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.CreationDate.Equal(created.CreationDate) {
		t.Fatalf("creation date must be immutable: %v vs %v", updated.CreationDate, created.CreationDate)
	}

	if _, err := store.UpdateTask(ctx, model.Task{ID: 999, UserID: "u-1", Name: "x"}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("missing id: expected ErrNotFound, got %v", err)
	}
	if _, err := store.UpdateTask(ctx, model.Task{ID: created.ID, UserID: "u-1", Name: ""}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("empty name: expected ErrValidation, got %v", err)
	}
}

func TestStore_UpdateTask_OtherOwnerNeverMutates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	victim, err := store.CreateTask(ctx, "owner", NewTask{Name: "Mine"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	forged := *victim
	forged.UserID = "intruder"
	forged.Name = "Hijacked"

	if _, err := store.UpdateTask(ctx, forged); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := store.GetTask(ctx, victim.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Name != "Mine" || got.UserID != "owner" {
		t.Fatalf("task was mutated: %+v", got)
	}
}

func TestStore_DeleteTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.CreateTask(ctx, "owner", NewTask{Name: "Temp"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := store.DeleteTask(ctx, "intruder", task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("non-owner delete: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetTask(ctx, task.ID); err != nil {
		t.Fatalf("task must survive a non-owner delete: %v", err)
	}

	deleted, err := store.DeleteTask(ctx, "owner", task.ID)
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if deleted.ID != task.ID || deleted.Name != "Temp" {
		t.Fatalf("snapshot mismatch: %+v", deleted)
	}
	if _, err := store.GetTask(ctx, task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected task gone, got %v", err)
	}
	if _, err := store.DeleteTask(ctx, "owner", task.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetTaskCompleted_IdempotentAndOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.CreateTask(ctx, "u-1", NewTask{Name: "Toggle"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := store.SetTaskCompleted(ctx, "u-1", task.ID, false)
		if err != nil {
			t.Fatalf("SetTaskCompleted(false) #%d: %v", i, err)
		}
		if got.CompletionDate != nil {
			t.Fatalf("completion date must stay null, got %v", got.CompletionDate)
		}
	}

	first := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(90 * time.Minute)
	store.now = func() time.Time { return first }
	if _, err := store.SetTaskCompleted(ctx, "u-1", task.ID, true); err != nil {
		t.Fatalf("SetTaskCompleted(true): %v", err)
	}
	store.now = func() time.Time { return second }
	got, err := store.SetTaskCompleted(ctx, "u-1", task.ID, true)
	if err != nil {
		t.Fatalf("SetTaskCompleted(true) again: %v", err)
	}
	if got.CompletionDate == nil || !got.CompletionDate.Equal(second) {
		t.Fatalf("completion date = %v, want %v", got.CompletionDate, second)
	}

	if _, err := store.SetTaskCompleted(ctx, "intruder", task.ID, false); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("non-owner toggle: expected ErrNotFound, got %v", err)
	}
	unchanged, _ := store.GetTask(ctx, task.ID)
	if unchanged.CompletionDate == nil {
		t.Fatalf("non-owner toggle must not clear completion")
	}
}

func TestStore_Categories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	work, err := store.CreateCategory(ctx, "u-1", NewCategory{Name: "Work"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if work.ID == 0 || work.Name != "Work" || work.Description != nil || work.DisplayColor != nil {
		t.Fatalf("unexpected category: %+v", work)
	}
	if _, err := store.CreateCategory(ctx, "u-1", NewCategory{Name: "Admin", DisplayColor: ptr("#000")}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := store.CreateCategory(ctx, "u-2", NewCategory{Name: "Elsewhere"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := store.CreateCategory(ctx, "u-1", NewCategory{Name: ""}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	list, err := store.GetCategories(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetCategories: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Admin" || list[1].Name != "Work" {
		t.Fatalf("expected [Admin Work], got %+v", list)
	}

	renamed := *work
	renamed.Name = "Office"
	renamed.DisplayColor = ptr("#336699")
	updated, err := store.UpdateCategory(ctx, renamed)
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != "Office" || *updated.DisplayColor != "#336699" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	renamed.UserID = "u-2"
	if _, err := store.UpdateCategory(ctx, renamed); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("non-owner update: expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteCategory_KeepsTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "u-1", NewCategory{Name: "Home"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	task, err := store.CreateTask(ctx, "u-1", NewTask{Name: "Dishes", CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := store.DeleteCategory(ctx, "u-2", cat.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("non-owner delete: expected ErrNotFound, got %v", err)
	}
	deleted, err := store.DeleteCategory(ctx, "u-1", cat.ID)
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if deleted.Name != "Home" {
		t.Fatalf("snapshot mismatch: %+v", deleted)
	}

	kept, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("task must survive category deletion: %v", err)
	}
	if kept.CategoryID == nil || *kept.CategoryID != cat.ID {
		t.Fatalf("expected dangling category id %d, got %v", cat.ID, kept.CategoryID)
	}

	// Dangling references are accepted on write as well.
	if _, err := store.CreateTask(ctx, "u-1", NewTask{Name: "Orphan", CategoryID: ptr(uint(12345))}); err != nil {
		t.Fatalf("CreateTask with unknown category: %v", err)
	}
}

func TestStore_ListOwners(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, owner := range []string{"b", "a", "b"} {
		if _, err := store.CreateTask(ctx, owner, NewTask{Name: "t"}); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	owners, err := store.ListOwners(ctx)
	if err != nil {
		t.Fatalf("ListOwners: %v", err)
	}
	if strings.Join(owners, ",") != "a,b" {
		t.Fatalf("owners = %v", owners)
	}
}

func TestStore_QueryErrorCarriesStatement(t *testing.T) {
	store := newTestStore(t)
	_, err := store.selectRows(context.Background(), "broken", `SELECT * FROM no_such_table WHERE id = ?`, 1)
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QueryError, got %v", err)
	}
	if qe.Op != "broken" || !strings.Contains(qe.SQL, "no_such_table") || len(qe.Args) != 1 {
		t.Fatalf("unexpected QueryError: %+v", qe)
	}
}

func names(tasks []model.Task) []string {
	var out []string
	for _, task := range tasks {
		out = append(out, task.Name)
	}
	return out
}

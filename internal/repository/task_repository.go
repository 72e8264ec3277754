package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"task-tracker/internal/model"
)

// NewTask carries the caller-controlled fields of a task being created.
type NewTask struct {
	Name        string
	CategoryID  *uint
	Description *string
	DueDate     *time.Time
}

// GetTasks lists a user's tasks ordered by due date, tasks without one last.
func (s *Store) GetTasks(ctx context.Context, userID string, q TaskQuery) ([]model.Task, error) {
	query, args := buildTaskQuery(userID, q)
	rows, err := s.selectRows(ctx, "get tasks", query, args...)
	if err != nil {
		return nil, err
	}
	tasks, err := s.decodeTasks(rows)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":      userID,
		"filter":       q.Filter.String(),
		"time_horizon": q.Horizon.String(),
		"count":        len(tasks),
	}).Debug("tasks found")
	return tasks, nil
}

// GetTask loads a task by id regardless of owner; callers check ownership.
func (s *Store) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	rows, err := s.selectRows(ctx, "get task", `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("task %d: %w", id, model.ErrNotFound)
	}
	tasks, err := s.decodeTasks(rows)
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (s *Store) CreateTask(ctx context.Context, userID string, in NewTask) (*model.Task, error) {
	if userID == "" {
		return nil, model.Invalid("user id is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.Invalid("name is required")
	}

	task := model.Task{
		UserID:       userID,
		CategoryID:   in.CategoryID,
		Name:         name,
		Description:  in.Description,
		CreationDate: s.now(),
		DueDate:      utcOrNil(in.DueDate),
	}
	tx := s.db.WithContext(ctx).Omit(clause.Associations).Create(&task)
	if tx.Error != nil {
		return nil, s.execError("create task", tx)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "task_id": task.ID}).Debug("task created")
	return s.GetTask(ctx, task.ID)
}

// UpdateTask overwrites the mutable columns of the task with task.ID owned by task.UserID.
// The id, owner and creation date are never written.
func (s *Store) UpdateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	name := strings.TrimSpace(task.Name)
	if name == "" {
		return nil, model.Invalid("name is required")
	}

	tx := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]any{
			"category_id":     task.CategoryID,
			"name":            name,
			"description":     task.Description,
			"due_date":        utcOrNil(task.DueDate),
			"completion_date": utcOrNil(task.CompletionDate),
		})
	if tx.Error != nil {
		return nil, s.execError("update task", tx)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("update task %d: %w", task.ID, model.ErrNotFound)
	}
	return s.GetTask(ctx, task.ID)
}

// DeleteTask removes the user's task and returns the row as it was before deletion.
// The snapshot read and the delete are separate statements.
func (s *Store) DeleteTask(ctx context.Context, userID string, id uint) (*model.Task, error) {
	rows, err := s.selectRows(ctx, "delete task",
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("delete task %d: %w", id, model.ErrNotFound)
	}
	snapshot, err := s.decodeTasks(rows)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Task{})
	if tx.Error != nil {
		return nil, s.execError("delete task", tx)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("delete task %d: %w", id, model.ErrNotFound)
	}
	return &snapshot[0], nil
}

// SetTaskCompleted stamps the completion date with the current time, or clears it.
func (s *Store) SetTaskCompleted(ctx context.Context, userID string, id uint, completed bool) (*model.Task, error) {
	var completedAt *time.Time
	if completed {
		now := s.now()
		completedAt = &now
	}

	tx := s.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("completion_date", completedAt)
	if tx.Error != nil {
		return nil, s.execError("set task completed", tx)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("set task %d completed: %w", id, model.ErrNotFound)
	}
	return s.GetTask(ctx, id)
}

func (s *Store) decodeTasks(rows []model.Row) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		task, err := model.TaskFromRow(row)
		if err != nil {
			s.log.WithError(err).Error("decode task row")
			return nil, fmt.Errorf("decode task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

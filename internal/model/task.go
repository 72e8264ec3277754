package model

import "time"

// Task is a single to-do item owned by one user.
// A non-nil CompletionDate means the task is complete.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"not null;index" json:"user_id"`
	CategoryID     *uint      `gorm:"index" json:"category_id"`
	Name           string     `gorm:"not null" json:"name"`
	Description    *string    `json:"description"`
	CreationDate   time.Time  `gorm:"not null" json:"creation_date"`
	DueDate        *time.Time `json:"due_date"`
	CompletionDate *time.Time `json:"completion_date"`

	// Category only declares the foreign key for migrations.
	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// Completed reports whether the task has a completion date.
func (t Task) Completed() bool {
	return t.CompletionDate != nil
}

// Row projects the task onto its storage columns.
func (t Task) Row() Row {
	return Row{
		"id":              t.ID,
		"user_id":         t.UserID,
		"category_id":     t.CategoryID,
		"name":            t.Name,
		"description":     t.Description,
		"creation_date":   t.CreationDate,
		"due_date":        t.DueDate,
		"completion_date": t.CompletionDate,
	}
}

// TaskFromRow decodes a storage row, failing on the first column that cannot be coerced.
func TaskFromRow(row Row) (Task, error) {
	var (
		t   Task
		err error
	)
	if t.ID, err = row.Uint("id"); err != nil {
		return Task{}, err
	}
	if t.UserID, err = row.String("user_id"); err != nil {
		return Task{}, err
	}
	if t.CategoryID, err = row.OptionalUint("category_id"); err != nil {
		return Task{}, err
	}
	if t.Name, err = row.String("name"); err != nil {
		return Task{}, err
	}
	if t.Description, err = row.OptionalString("description"); err != nil {
		return Task{}, err
	}
	if t.CreationDate, err = row.Time("creation_date"); err != nil {
		return Task{}, err
	}
	if t.DueDate, err = row.OptionalTime("due_date"); err != nil {
		return Task{}, err
	}
	if t.CompletionDate, err = row.OptionalTime("completion_date"); err != nil {
		return Task{}, err
	}
	return t, nil
}

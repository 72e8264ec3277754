package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"task-tracker/internal/model"
)

const categoryColumns = `id, user_id, name, description, display_color`

// NewCategory carries the caller-controlled fields of a category being created.
type NewCategory struct {
	Name         string
	Description  *string
	DisplayColor *string
}

func (s *Store) GetCategories(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := s.selectRows(ctx, "get categories",
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY name ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.decodeCategories(rows)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "count": len(categories)}).Debug("categories found")
	return categories, nil
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	rows, err := s.selectRows(ctx, "get category", `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("category %d: %w", id, model.ErrNotFound)
	}
	categories, err := s.decodeCategories(rows)
	if err != nil {
		return nil, err
	}
	return &categories[0], nil
}

func (s *Store) CreateCategory(ctx context.Context, userID string, in NewCategory) (*model.Category, error) {
	if userID == "" {
		return nil, model.Invalid("user id is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, model.Invalid("name is required")
	}

	category := model.Category{
		UserID:       userID,
		Name:         name,
		Description:  in.Description,
		DisplayColor: in.DisplayColor,
	}
	tx := s.db.WithContext(ctx).Create(&category)
	if tx.Error != nil {
		return nil, s.execError("create category", tx)
	}
	return s.GetCategory(ctx, category.ID)
}

// UpdateCategory overwrites name, description and display color of the owner's category.
func (s *Store) UpdateCategory(ctx context.Context, category model.Category) (*model.Category, error) {
	name := strings.TrimSpace(category.Name)
	if name == "" {
		return nil, model.Invalid("name is required")
	}

	tx := s.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ? AND user_id = ?", category.ID, category.UserID).
		Updates(map[string]any{
			"name":          name,
			"description":   category.Description,
			"display_color": category.DisplayColor,
		})
	if tx.Error != nil {
		return nil, s.execError("update category", tx)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("update category %d: %w", category.ID, model.ErrNotFound)
	}
	return s.GetCategory(ctx, category.ID)
}

// DeleteCategory removes the owner's category. Tasks that reference it are kept.
func (s *Store) DeleteCategory(ctx context.Context, userID string, id uint) (*model.Category, error) {
	rows, err := s.selectRows(ctx, "delete category",
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("delete category %d: %w", id, model.ErrNotFound)
	}
	snapshot, err := s.decodeCategories(rows)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Category{})
	if tx.Error != nil {
		return nil, s.execError("delete category", tx)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("delete category %d: %w", id, model.ErrNotFound)
	}
	return &snapshot[0], nil
}

func (s *Store) decodeCategories(rows []model.Row) ([]model.Category, error) {
	categories := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		category, err := model.CategoryFromRow(row)
		if err != nil {
			s.log.WithError(err).Error("decode category row")
			return nil, fmt.Errorf("decode category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

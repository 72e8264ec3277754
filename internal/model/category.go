package model

// Category groups tasks for one user (work, health, study, etc.).
type Category struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       string  `gorm:"not null;index" json:"user_id"`
	Name         string  `gorm:"not null" json:"name"`
	Description  *string `json:"description"`
	DisplayColor *string `json:"display_color"`
}

// Row projects the category onto its storage columns.
func (c Category) Row() Row {
	return Row{
		"id":            c.ID,
		"user_id":       c.UserID,
		"name":          c.Name,
		"description":   c.Description,
		"display_color": c.DisplayColor,
	}
}

// CategoryFromRow decodes a storage row, failing on the first column that cannot be coerced.
func CategoryFromRow(row Row) (Category, error) {
	var (
		c   Category
		err error
	)
	if c.ID, err = row.Uint("id"); err != nil {
		return Category{}, err
	}
	if c.UserID, err = row.String("user_id"); err != nil {
		return Category{}, err
	}
	if c.Name, err = row.String("name"); err != nil {
		return Category{}, err
	}
	if c.Description, err = row.OptionalString("description"); err != nil {
		return Category{}, err
	}
	if c.DisplayColor, err = row.OptionalString("display_color"); err != nil {
		return Category{}, err
	}
	return c, nil
}

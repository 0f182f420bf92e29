package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Exists reports whether a row of T with the given primary key exists.
func Exists[T any](ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return count > 0, nil
}

// UpdateByID writes every column of model, associations excluded, to the row
// with the given id. The bool is false when no row matched.
func UpdateByID[T any](ctx context.Context, db *gorm.DB, id uint, model *T) (bool, error) {
	res := db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", clause.Associations).
		Updates(model)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID hard deletes the row with the given id.
func DeleteByID[T any](ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

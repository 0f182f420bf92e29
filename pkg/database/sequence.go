package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence is a named counter owned by the database. Rows are only ever
// changed with single-statement increments so concurrent writers serialize on
// the row lock instead of racing in process memory.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "sequences" }

// SeedFunc computes the starting value of a sequence that has no row yet.
type SeedFunc func(tx *gorm.DB) (int64, error)

// NextValue increments the named sequence and returns the new value. It must
// run inside the transaction that consumes the value.
func NextValue(tx *gorm.DB, name string, seed SeedFunc) (int64, error) {
	res := tx.Model(&Sequence{}).Where("name = ?", name).
		Update("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", name, res.Error)
	}

	if res.RowsAffected == 0 {
		if err := ensureSequence(tx, name, seed); err != nil {
			return 0, err
		}
		res = tx.Model(&Sequence{}).Where("name = ?", name).
			Update("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return 0, fmt.Errorf("failed to increment sequence %s: %w", name, res.Error)
		}
		if res.RowsAffected == 0 {
			return 0, fmt.Errorf("sequence %s disappeared during increment", name)
		}
	}

	var seq Sequence
	if err := tx.Where("name = ?", name).Take(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}
	return seq.Value, nil
}

// AdvanceTo moves the sequence forward to value when it is behind. Used when a
// caller supplies an explicit code so the counter never hands it out again.
func AdvanceTo(tx *gorm.DB, name string, value int64, seed SeedFunc) error {
	if err := ensureSequence(tx, name, seed); err != nil {
		return err
	}
	err := tx.Model(&Sequence{}).
		Where("name = ? AND value < ?", name, value).
		Update("value", value).Error
	if err != nil {
		return fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return nil
}

// CurrentValue returns the last value handed out, or 0 when the sequence has no row.
func CurrentValue(db *gorm.DB, name string) (int64, error) {
	var seq Sequence
	err := db.Where("name = ?", name).Limit(1).Find(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", name, err)
	}
	return seq.Value, nil
}

func ensureSequence(tx *gorm.DB, name string, seed SeedFunc) error {
	var count int64
	if err := tx.Model(&Sequence{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check sequence %s: %w", name, err)
	}
	if count > 0 {
		return nil
	}

	var start int64
	if seed != nil {
		v, err := seed(tx)
		if err != nil {
			return fmt.Errorf("failed to seed sequence %s: %w", name, err)
		}
		start = v
	}

	// A concurrent writer may create the row first; its value wins.
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Sequence{Name: name, Value: start}).Error
	if err != nil {
		return fmt.Errorf("failed to create sequence %s: %w", name, err)
	}
	return nil
}

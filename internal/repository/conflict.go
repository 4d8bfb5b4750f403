package repository

import (
	"errors"

	"gorm.io/gorm"

	"agentsync/internal/db"
	"agentsync/internal/model"
)

// ConflictRepository persists ConflictRecords keyed by file path for the
// lifetime of the repository's current conflict set.
type ConflictRepository struct{}

func NewConflictRepository() *ConflictRepository {
	return &ConflictRepository{}
}

// Upsert stores a record, replacing any existing record for the same path.
func (r *ConflictRepository) Upsert(record *model.ConflictRecord) error {
	existing, err := r.Get(record.Path)
	if err != nil {
		return err
	}

	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		return db.DB.Save(record).Error
	}

	return db.DB.Create(record).Error
}

// Get returns the record for path, or nil when none exists.
func (r *ConflictRepository) Get(path string) (*model.ConflictRecord, error) {
	var record model.ConflictRecord
	err := db.DB.Where("path = ?", path).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

func (r *ConflictRepository) ListUnresolved() ([]model.ConflictRecord, error) {
	var records []model.ConflictRecord
	result := db.DB.
		Where("status = ?", model.ResolutionUnresolved).
		Order("path asc").
		Find(&records)

	return records, result.Error
}

func (r *ConflictRepository) Save(record *model.ConflictRecord) error {
	return db.DB.Save(record).Error
}

// ClearResolved drops resolved and abandoned records, called once a cycle
// completes cleanly after resolution.
func (r *ConflictRepository) ClearResolved() error {
	return db.DB.
		Where("status <> ?", model.ResolutionUnresolved).
		Delete(&model.ConflictRecord{}).Error
}

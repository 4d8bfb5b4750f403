package repository

import (
	"time"

	"agentsync/internal/db"
	"agentsync/internal/model"
)

type CycleRepository struct{}

func NewCycleRepository() *CycleRepository {
	return &CycleRepository{}
}

func (r *CycleRepository) Save(result model.SyncCycleResult, startedAt time.Time) error {
	row := model.CycleHistory{
		CycleID:    result.CycleID,
		Status:     result.Status,
		CommitID:   result.CommitID,
		Pulled:     result.FilesPulled,
		Modified:   result.FilesModified,
		Added:      result.FilesAdded,
		Deleted:    result.FilesDeleted,
		Message:    result.Message,
		DurationMs: result.Duration.Milliseconds(),
		StartedAt:  startedAt,
	}

	if result.Status != model.CycleSuccess {
		row.ErrMsg = result.Message
	}

	return db.DB.Create(&row).Error
}

type Stats struct {
	Total   int64
	Success int64
	Failed  int64
}

func (r *CycleRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := db.DB.Model(&model.CycleHistory{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := db.DB.Model(&model.CycleHistory{}).
		Where("status = ?", model.CycleSuccess).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Success
	return stats, nil
}

func (r *CycleRepository) GetRecent(limit int) ([]model.CycleHistory, error) {
	var rows []model.CycleHistory
	result := db.DB.
		Order("started_at desc").
		Limit(limit).
		Find(&rows)

	return rows, result.Error
}

func (r *CycleRepository) GetFailed() ([]model.CycleHistory, error) {
	var rows []model.CycleHistory
	result := db.DB.
		Where("status <> ?", model.CycleSuccess).
		Order("started_at desc").
		Find(&rows)

	return rows, result.Error
}

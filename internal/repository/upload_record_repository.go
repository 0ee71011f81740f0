package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docqa/internal/model"
)

type UploadRecordRepository struct {
	db *gorm.DB
}

func NewUploadRecordRepository(db *gorm.DB) *UploadRecordRepository {
	return &UploadRecordRepository{db: db}
}

func (r *UploadRecordRepository) Create(record *model.UploadRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create upload record failed: %w", err)
	}
	return nil
}

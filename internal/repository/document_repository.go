package repository

import (
	"context"

	"gorm.io/gorm"

	"clinicdesk/internal/model"
)

// DocumentRepository defines document persistence operations.
type DocumentRepository interface {
	Create(ctx context.Context, document *model.Document) error
	FindByID(ctx context.Context, id uint) (*model.Document, error)
	ListByPatient(ctx context.Context, patientID uint) ([]model.Document, error)
	ListAll(ctx context.Context) ([]model.Document, error)
	Delete(ctx context.Context, id uint) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository builds a GORM-backed repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *model.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uint) (*model.Document, error) {
	var document model.Document
	if err := r.db.WithContext(ctx).First(&document, id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) ListByPatient(ctx context.Context, patientID uint) ([]model.Document, error) {
	var documents []model.Document
	err := r.db.WithContext(ctx).
		Where("paciente_id = ?", patientID).
		Order("created_at desc").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *documentRepository) ListAll(ctx context.Context) ([]model.Document, error) {
	var documents []model.Document
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *documentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}

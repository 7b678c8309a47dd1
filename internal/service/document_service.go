package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinicdesk/internal/errors"
	"clinicdesk/internal/model"
	"clinicdesk/internal/policy"
	"clinicdesk/internal/repository"
	"clinicdesk/internal/storage"
)

// MaxDocumentSize is the upload size cap in bytes (16MB).
const MaxDocumentSize = 16 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".doc":  true,
	".docx": true,
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// DocumentUpload carries an upload request.
type DocumentUpload struct {
	PatientID uint
	Category  string
	FileName  string
	Size      int64
	Content   io.Reader
}

// DocumentService associates uploaded blobs with patient records.
type DocumentService interface {
	Upload(ctx context.Context, actor *model.User, upload DocumentUpload) (*model.Document, error)
	List(ctx context.Context, actor *model.User, patientID uint) ([]model.Document, error)
	Download(ctx context.Context, actor *model.User, id uint) (*model.Document, io.ReadCloser, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
}

type documentService struct {
	userRepo     repository.UserRepository
	documentRepo repository.DocumentRepository
	store        storage.Store
	now          func() time.Time
}

// NewDocumentService builds a DocumentService.
func NewDocumentService(userRepo repository.UserRepository, documentRepo repository.DocumentRepository, store storage.Store) DocumentService {
	return &documentService{
		userRepo:     userRepo,
		documentRepo: documentRepo,
		store:        store,
		now:          time.Now,
	}
}

// Upload stores the blob and registers the document. Only the clinician and
// admins may upload. The blob is written before the row so a store failure
// never leaves a row pointing at nothing.
func (s *documentService) Upload(ctx context.Context, actor *model.User, upload DocumentUpload) (*model.Document, error) {
	if !policy.Authorize(actor.Role, policy.ActionDocumentWrite, actor.ID, upload.PatientID) {
		return nil, errors.Forbidden("not allowed to upload documents")
	}
	if upload.FileName == "" {
		return nil, errors.Validation("no file provided")
	}
	if upload.PatientID == 0 || upload.Category == "" {
		return nil, errors.Validation("paciente_id and tipo_documento are required")
	}
	ext := strings.ToLower(filepath.Ext(upload.FileName))
	if !allowedExtensions[ext] {
		return nil, errors.Validation("file type not allowed")
	}
	if upload.Size > MaxDocumentSize {
		return nil, errors.Validation("file too large, maximum is 16MB")
	}

	patient, err := s.userRepo.FindByID(ctx, upload.PatientID)
	if err != nil || patient.Role != model.RolePatient {
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, errors.Internal("failed to resolve patient")
		}
		return nil, errors.NotFound("patient not found")
	}

	path := fmt.Sprintf("paciente_%d/%s_%s_%s",
		patient.ID,
		s.now().Format("20060102_150405"),
		uuid.New().String()[:8],
		sanitizeFileName(upload.FileName),
	)
	written, err := s.store.Save(ctx, path, upload.Content)
	if err != nil {
		return nil, errors.Internal("failed to store file")
	}

	document := &model.Document{
		PatientID:   patient.ID,
		FileName:    upload.FileName,
		Category:    upload.Category,
		StoragePath: path,
		SizeBytes:   written,
		UploadedBy:  actor.ID,
	}
	if err := s.documentRepo.Create(ctx, document); err != nil {
		// Roll back the blob so no orphan outlives a failed registration.
		_ = s.store.Remove(ctx, path)
		return nil, errors.Internal("failed to register document")
	}
	return document, nil
}

// List returns documents visible to the actor: patients see their own, the
// clinician and admins see all or a single patient's, newest first.
func (s *documentService) List(ctx context.Context, actor *model.User, patientID uint) ([]model.Document, error) {
	var (
		documents []model.Document
		err       error
	)
	switch {
	case actor.Role == model.RolePatient:
		documents, err = s.documentRepo.ListByPatient(ctx, actor.ID)
	case patientID != 0:
		documents, err = s.documentRepo.ListByPatient(ctx, patientID)
	default:
		documents, err = s.documentRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, errors.Internal("failed to list documents")
	}
	return documents, nil
}

// Download opens the blob behind a document the actor may read.
func (s *documentService) Download(ctx context.Context, actor *model.User, id uint) (*model.Document, io.ReadCloser, error) {
	document, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errors.NotFound("document not found")
		}
		return nil, nil, errors.Internal("failed to load document")
	}

	if !policy.Authorize(actor.Role, policy.ActionDocumentRead, actor.ID, document.PatientID) {
		return nil, nil, errors.Forbidden("not allowed to access this document")
	}

	content, err := s.store.Open(ctx, document.StoragePath)
	if err != nil {
		if err == storage.ErrBlobNotFound {
			return nil, nil, errors.NotFound("file missing from storage")
		}
		return nil, nil, errors.Internal("failed to open file")
	}
	return document, content, nil
}

// Delete removes the blob and the registry row. A blob already missing from
// storage is tolerated: the row is deleted regardless.
func (s *documentService) Delete(ctx context.Context, actor *model.User, id uint) error {
	document, err := s.documentRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NotFound("document not found")
		}
		return errors.Internal("failed to load document")
	}

	if !policy.Authorize(actor.Role, policy.ActionDocumentWrite, actor.ID, document.PatientID) {
		return errors.Forbidden("not allowed to delete documents")
	}

	if err := s.store.Remove(ctx, document.StoragePath); err != nil && err != storage.ErrBlobNotFound {
		return errors.Internal("failed to remove file")
	}
	if err := s.documentRepo.Delete(ctx, document.ID); err != nil {
		return errors.Internal("failed to delete document")
	}
	return nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	return unsafeFileNameChars.ReplaceAllString(base, "_")
}

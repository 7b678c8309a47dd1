package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"clinicdesk/internal/errors"
	"clinicdesk/internal/service"
)

// DocumentHandler handles document endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload godoc
// @Summary Upload a document for a patient
// @Tags documentos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param arquivo formData file true "Document file"
// @Param paciente_id formData int true "Patient ID"
// @Param tipo_documento formData string true "Document category"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documentos [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("arquivo")
	if err != nil {
		return fail(c, errors.Validation("no file provided"))
	}

	var patientID uint
	if raw := c.FormValue("paciente_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, errors.Validation("invalid paciente_id"))
		}
		patientID = uint(parsed)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, errors.Internal("failed to read uploaded file"))
	}
	defer file.Close()

	document, err := h.documentService.Upload(c.Request().Context(), actor, service.DocumentUpload{
		PatientID: patientID,
		Category:  c.FormValue("tipo_documento"),
		FileName:  fileHeader.Filename,
		Size:      fileHeader.Size,
		Content:   file,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":   "document uploaded successfully",
		"documento": document,
	})
}

// List godoc
// @Summary List documents visible to the actor
// @Tags documentos
// @Produce json
// @Security BearerAuth
// @Param paciente_id query int false "Filter by patient (clinician/admin only)"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /documentos [get]
func (h *DocumentHandler) List(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var patientID uint
	if raw := c.QueryParam("paciente_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fail(c, errors.Validation("invalid paciente_id parameter"))
		}
		patientID = uint(parsed)
	}

	documents, err := h.documentService.List(c.Request().Context(), actor, patientID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"documentos": documents})
}

// Download godoc
// @Summary Download a document
// @Tags documentos
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documentos/{id} [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, errors.Validation("invalid document id"))
	}

	document, content, err := h.documentService.Download(c.Request().Context(), actor, uint(id))
	if err != nil {
		return fail(c, err)
	}
	defer content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", document.FileName))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, content)
}

// Delete godoc
// @Summary Delete a document and its stored file
// @Tags documentos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /documentos/{id} [delete]
func (h *DocumentHandler) Delete(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return fail(c, errors.Validation("invalid document id"))
	}

	if err := h.documentService.Delete(c.Request().Context(), actor, uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "document deleted successfully"})
}

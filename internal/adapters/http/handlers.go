package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
)

const multipartMemoryLimit = 8 << 20

func (rt *Router) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{Documents: rt.compliance.Catalog()})
}

func (rt *Router) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := rt.profiles.Get(r.Context(), companyIDParam(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (rt *Router) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !rt.decodeAndValidate(w, r, &req) {
		return
	}
	saved, err := rt.profiles.Upsert(r.Context(), domain.CompanyProfile{
		CompanyID:   companyIDParam(r),
		CompanyName: req.CompanyName,
		Industry:    domain.Industry(req.Industry),
		CompanySize: domain.CompanySize(req.CompanySize),
		Address:     req.Address,
		Website:     req.Website,
		Summary:     req.Summary,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (rt *Router) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	companyID := companyIDParam(r)
	assessment, err := rt.compliance.Assessment(r.Context(), companyID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.recordAssessment("roadmap", assessment.Status)
	writeJSON(w, http.StatusOK, roadmapResponse{
		CompanyID: companyID,
		Items:     assessment.Items,
		Status:    assessment.Status,
	})
}

func (rt *Router) handleCompliance(w http.ResponseWriter, r *http.Request) {
	status, err := rt.compliance.Status(r.Context(), companyIDParam(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.recordAssessment("compliance", status)
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) handleRoadmapExport(w http.ResponseWriter, r *http.Request) {
	if rt.exporter == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "roadmap export is not configured"})
		return
	}
	companyID := companyIDParam(r)
	assessment, err := rt.compliance.Assessment(r.Context(), companyID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := rt.exporter.Export(r.Context(), &buf, assessment.Profile, assessment.Items, assessment.Status); err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.recordAssessment("roadmap_export", assessment.Status)
	if rt.metrics != nil {
		rt.metrics.RecordExport(metricsService, "xlsx")
	}

	w.Header().Set("Content-Type", rt.exporter.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": fmt.Sprintf("compliance-roadmap-%s.xlsx", companyID),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (rt *Router) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	records, err := rt.documents.List(r.Context(), companyIDParam(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: records})
}

func (rt *Router) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	record, err := rt.documents.Get(r.Context(), companyIDParam(r), chi.URLParam(r, "documentID"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if !rt.decodeAndValidate(w, r, &req) {
		return
	}
	record, err := rt.documents.Create(r.Context(), companyIDParam(r),
		domain.DocumentTypeID(req.TypeID), domain.DocumentKind(req.Kind), req.Content)
	if err != nil {
		rt.recordSave("create", saveOutcome(err))
		rt.writeError(w, r, err)
		return
	}
	rt.recordSave("create", "created")
	writeJSON(w, http.StatusCreated, record)
}

// handleSaveDocument revises the addressed record, or creates a new one when
// the id does not belong to the company. The response code tells them apart.
func (rt *Router) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	var req saveDocumentRequest
	if !rt.decodeAndValidate(w, r, &req) {
		return
	}
	documentID := chi.URLParam(r, "documentID")
	record, err := rt.documents.Save(r.Context(), companyIDParam(r), domain.DocumentRecord{
		ID:      documentID,
		TypeID:  domain.DocumentTypeID(req.TypeID),
		Kind:    domain.DocumentKind(req.Kind),
		Content: req.Content,
		Version: req.Version,
	})
	if err != nil {
		rt.recordSave("save", saveOutcome(err))
		rt.writeError(w, r, err)
		return
	}
	if record.ID != documentID {
		rt.recordSave("save", "created")
		writeJSON(w, http.StatusCreated, record)
		return
	}
	rt.recordSave("save", "revised")
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) handleImportDocument(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.ImportMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.ImportMaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("file exceeds %d bytes", rt.cfg.ImportMaxBytes)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expected multipart form with a file field"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file field is required"})
		return
	}
	defer file.Close()

	mimeType := detectMimeType(header.Header.Get("Content-Type"), header.Filename)
	record, err := rt.documents.Import(r.Context(), companyIDParam(r),
		domain.DocumentTypeID(strings.TrimSpace(r.FormValue("type_id"))), header.Filename, mimeType, file)
	if err != nil {
		rt.recordImport(mimeType, saveOutcome(err))
		rt.writeError(w, r, err)
		return
	}
	rt.recordImport(mimeType, "imported")
	writeJSON(w, http.StatusCreated, record)
}

// detectMimeType trusts the part header unless it is missing or generic.
func detectMimeType(declared, filename string) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	return "application/octet-stream"
}

func (rt *Router) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return false
	}
	if err := rt.validator.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: extractValidationErrors(err)})
		return false
	}
	return true
}

func (rt *Router) recordAssessment(endpoint string, status domain.ComplianceStatus) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAssessment(metricsService, endpoint, status.Score, len(status.MissingMandatory))
}

func (rt *Router) recordSave(operation, outcome string) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordDocumentSave(metricsService, operation, outcome)
}

func (rt *Router) recordImport(mimeType, outcome string) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordDocumentImport(metricsService, mimeType, outcome)
}

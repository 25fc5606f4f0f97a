package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/futig/mini-rag/internal/pkg/logger"
	"github.com/futig/mini-rag/internal/pkg/response"
	"github.com/futig/mini-rag/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   RAGUsecase
	cfg       config.FileUploadConfig
	uploadDir string
	validator UploadValidator
}

func NewHandler(
	usecase RAGUsecase,
	cfg config.FileUploadConfig,
	uploadDir string,
	validator UploadValidator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		cfg:       cfg,
		uploadDir: uploadDir,
		validator: validator,
	}
}

// Upload handles POST /upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Upload")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid form data or size too large", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		h.respondError(ctx, w, http.StatusBadRequest, "field 'file' is required", nil)
		return
	}
	fh := files[0]

	if err := h.validator.ValidateUpload(fh); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	filename := validator.SanitizeFilename(fh.Filename)
	ctx = logger.AddFields(ctx, zap.String("filename", filename))

	path, err := h.save(fh, filename)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to store uploaded file", err)
		return
	}

	ctxzap.Info(ctx, "file uploaded", zap.Int64("size", fh.Size))

	chunks, err := h.usecase.IngestFile(ctx, path)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "file ingested successfully", zap.Int("chunks_added", chunks))

	response.Success(w, &entity.UploadResponse{
		Status:      "uploaded",
		Filename:    filename,
		ChunksAdded: chunks,
	})
}

// Query handles GET /query?q=
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Query")

	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		h.respondError(ctx, w, http.StatusBadRequest, "query parameter 'q' is required", nil)
		return
	}

	out, err := h.usecase.AnswerQuery(ctx, &entity.QueryRequest{Query: q})
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toResponseBody(out))
}

// Chat handles POST /chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		h.respondError(ctx, w, http.StatusBadRequest, "field 'query' is required", nil)
		return
	}

	out, err := h.usecase.AnswerQuery(ctx, toQueryRequest(&req))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toResponseBody(out))
}

// Summary handles POST /summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Summary")

	var req entity.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if strings.TrimSpace(req.Source) == "" {
		h.respondError(ctx, w, http.StatusBadRequest, "field 'source' is required", nil)
		return
	}

	summary, err := h.usecase.Summarize(ctx, req.Source)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, summary)
}

// ExportSummary handles POST /summary/export
func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportSummary")

	var req entity.ExportSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if strings.TrimSpace(req.Source) == "" {
		h.respondError(ctx, w, http.StatusBadRequest, "field 'source' is required", nil)
		return
	}

	file, err := h.usecase.ExportSummary(ctx, req.Source, req.Format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "summary exported", zap.String("filename", file.Filename))
	response.File(w, file)
}

// ListDocuments handles GET /documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListDocuments")

	docs, err := h.usecase.ListDocuments(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.ListDocumentsResponse{Documents: docs})
}

// Clear handles DELETE /clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Clear")

	if err := h.usecase.Clear(ctx); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "collection cleared")
	response.Success(w, &entity.StatusResponse{Status: "cleared"})
}

func (h *Handler) save(fh *multipart.FileHeader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	path := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return path, nil
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter: "+err.Error(), err)
	case errors.Is(err, entity.ErrInvalidFile) || errors.Is(err, entity.ErrFileTooLarge):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file: "+err.Error(), err)
	case errors.Is(err, entity.ErrUnsupportedFormat):
		h.respondError(ctx, w, http.StatusBadRequest, "unsupported format", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

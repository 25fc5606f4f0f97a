package rag

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	err     error
	lastReq *entity.QueryRequest
	outcome *entity.QueryOutcome
	cleared bool
}

func (s *stubUsecase) IngestFile(context.Context, string) (int, error) { return 0, s.err }

func (s *stubUsecase) AnswerQuery(_ context.Context, req *entity.QueryRequest) (*entity.QueryOutcome, error) {
	s.lastReq = req
	return s.outcome, s.err
}

func (s *stubUsecase) Summarize(_ context.Context, source string) (*entity.Summary, error) {
	return &entity.Summary{Source: source}, s.err
}

func (s *stubUsecase) ExportSummary(context.Context, string, entity.ResultFormat) (*entity.ExportedFile, error) {
	return nil, s.err
}

func (s *stubUsecase) ListDocuments(context.Context) ([]*entity.Document, error) { return nil, s.err }

func (s *stubUsecase) Clear(context.Context) error {
	s.cleared = true
	return s.err
}

type allowAll struct{}

func (allowAll) ValidateUpload(*multipart.FileHeader) error { return nil }

func newRouter(uc RAGUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, config.FileUploadConfig{MaxFileSize: 1024, MaxUploadSize: 2048}, "", allowAll{}))
	return r
}

func TestHandleUsecaseError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing field", fmt.Errorf("wrap: %w", entity.ErrMissingField), http.StatusBadRequest},
		{"file too large", fmt.Errorf("wrap: %w", entity.ErrFileTooLarge), http.StatusBadRequest},
		{"unsupported format", entity.ErrUnsupportedFormat, http.StatusBadRequest},
		{"backend down", errors.New("qdrant unreachable"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/clear", nil)

			newRouter(&stubUsecase{err: tt.err}).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"`+http.StatusText(tt.status)+`"`)
		})
	}
}

func TestChat_PassesSourceAndHistory(t *testing.T) {
	uc := &stubUsecase{outcome: &entity.QueryOutcome{
		Route:  entity.RouteRetrieve,
		Answer: &entity.Answer{Query: "q", FinalAnswer: "a", TopContexts: []entity.Payload{}},
	}}

	body := `{"query":"q","history":["hi","hello"],"source":"doc.pdf"}`
	rec := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doc.pdf", uc.lastReq.Source)
	assert.Equal(t, []string{"hi", "hello"}, uc.lastReq.History)
	assert.JSONEq(t, `{"query":"q","final_answer":"a","top_contexts":[]}`, rec.Body.String())
}

func TestChat_NullSource(t *testing.T) {
	uc := &stubUsecase{outcome: &entity.QueryOutcome{Route: entity.RouteRetrieve, Answer: &entity.Answer{}}}

	rec := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"query":"summarize","source":null}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, uc.lastReq.Source)
}

func TestChat_InvalidBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&stubUsecase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

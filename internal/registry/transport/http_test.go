package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roeezolantz/errdex/internal/errordb"
	"github.com/roeezolantz/errdex/internal/registry/domain"
)

// stubService returns canned data for handler tests.
type stubService struct {
	publishErr error
	lookupErr  error
}

var stubRecord = errordb.Record{
	Name:       "Unauthorized",
	Signature:  "Unauthorized(address)",
	Inputs:     []string{"caller"},
	InputTypes: []string{"address"},
	Source:     "Ownable.sol",
	Selector:   "0x8e4a23d6",
}

func (s *stubService) Publish(_ context.Context, name, _ string, req domain.PublishRequest) (*domain.PublishResult, error) {
	if s.publishErr != nil {
		return nil, s.publishErr
	}
	version := req.Version
	if version == "" {
		version = "0.1.0"
	}
	return &domain.PublishResult{Name: name, Version: version, RecordCount: len(req.Records)}, nil
}

func (s *stubService) Get(_ context.Context, name, version string) (*domain.Database, error) {
	if name != "proto" {
		return nil, domain.ErrNotFound
	}
	return &domain.Database{Name: name, Version: version, RecordCount: 1}, nil
}

func (s *stubService) GetRecords(_ context.Context, name, _ string) ([]errordb.Record, error) {
	if name != "proto" {
		return nil, domain.ErrNotFound
	}
	return []errordb.Record{stubRecord}, nil
}

func (s *stubService) GetVersions(_ context.Context, name string) (*domain.VersionsResult, error) {
	if name != "proto" {
		return nil, domain.ErrNotFound
	}
	return &domain.VersionsResult{Name: name, Versions: []string{"1.0.0"}, Latest: "1.0.0"}, nil
}

func (s *stubService) List(context.Context, domain.ListFilter, domain.PaginationParams) (*domain.ListResult, error) {
	return &domain.ListResult{Databases: []domain.Database{{Name: "proto", Versions: []string{"1.0.0"}}}}, nil
}

func (s *stubService) Delete(_ context.Context, _, _, ownerID string) error {
	if ownerID != "owner-1" {
		return domain.ErrForbidden
	}
	return nil
}

func (s *stubService) Lookup(_ context.Context, _, _, sel string) (*errordb.Record, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if !strings.HasSuffix(stubRecord.Selector, strings.ToLower(strings.TrimPrefix(sel, "0x"))) {
		return nil, domain.ErrSelectorMiss
	}
	return &stubRecord, nil
}

func (s *stubService) Search(_ context.Context, _, _, query string) ([]errordb.Record, error) {
	if strings.Contains(strings.ToLower(stubRecord.Name), strings.ToLower(query)) {
		return []errordb.Record{stubRecord}, nil
	}
	return nil, nil
}

func (s *stubService) Summary(context.Context, string, string) ([]errordb.SourceCount, error) {
	return []errordb.SourceCount{{Source: "Ownable.sol", Count: 1}}, nil
}

func newTestRouter(svc domain.Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/v1/databases", func(r chi.Router) {
		h.RegisterReadRoutes(r)
		h.RegisterWriteRoutes(r)
	})
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleLookup(t *testing.T) {
	router := newTestRouter(&stubService{})

	t.Run("hit", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto/latest/selectors/0x8e4a23d6", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var record errordb.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
		assert.Equal(t, "Unauthorized", record.Name)
		assert.Equal(t, []string{"caller"}, record.Inputs)
	})

	t.Run("malformed selector is 400", func(t *testing.T) {
		router := newTestRouter(&stubService{lookupErr: domain.ErrInvalidSelector})
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto/latest/selectors/123", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_SELECTOR")
	})

	t.Run("miss is 404", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto/latest/selectors/0xffffffff", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "SELECTOR_NOT_FOUND")
	})
}

func TestHandlePublish(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		router := newTestRouter(&stubService{})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/databases/proto", `{"records":[]}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var result domain.PublishResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "0.1.0", result.Version)
	})

	t.Run("invalid json", func(t *testing.T) {
		router := newTestRouter(&stubService{})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/databases/proto", "{nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("version conflict", func(t *testing.T) {
		router := newTestRouter(&stubService{publishErr: domain.ErrVersionExists})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/databases/proto", `{"version":"1.0.0"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("foreign name forbidden", func(t *testing.T) {
		router := newTestRouter(&stubService{publishErr: domain.ErrForbidden})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/databases/proto", `{}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestReadEndpoints(t *testing.T) {
	router := newTestRouter(&stubService{})

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"proto"`)
	})

	t.Run("versions", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"latest":"1.0.0"`)
	})

	t.Run("versions of unknown name", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/unknown", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("records", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto/1.0.0/records", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"inputTypes":["address"]`)
	})

	t.Run("search requires query", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto/1.0.0/search", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto/1.0.0/search?q=auth", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unauthorized")
	})

	t.Run("sources", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/databases/proto/1.0.0/sources", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Ownable.sol")
	})
}

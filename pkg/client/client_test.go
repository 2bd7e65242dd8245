package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeRegistry(t *testing.T) *httptest.Server {
	t.Helper()

	record := Record{
		Name:       "Unauthorized",
		Signature:  "Unauthorized(address)",
		Inputs:     []string{"caller"},
		InputTypes: []string{"address"},
		Source:     "Ownable.sol",
		Selector:   "0x8e4a23d6",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/databases", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ListResponse{
			Data:       []Database{{Name: "proto", Versions: []string{"1.0.0"}}},
			Pagination: Pagination{Limit: 20},
		})
	})
	mux.HandleFunc("GET /api/v1/databases/proto", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VersionsResponse{Name: "proto", Versions: []string{"1.0.0"}, Latest: "1.0.0"})
	})
	mux.HandleFunc("GET /api/v1/databases/proto/latest/records", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"records": []Record{record}})
	})
	mux.HandleFunc("GET /api/v1/databases/proto/latest/selectors/{selector}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("selector") != "0x8e4a23d6" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "SELECTOR_NOT_FOUND", "message": "No error matches this selector"},
			})
			return
		}
		json.NewEncoder(w).Encode(record)
	})
	mux.HandleFunc("POST /api/v1/databases/proto", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "UNAUTHORIZED", "message": "API key required"},
			})
			return
		}
		var req PublishRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PublishResult{Name: "proto", Version: "0.1.0", RecordCount: len(req.Records)})
	})

	return httptest.NewServer(mux)
}

func TestClientReads(t *testing.T) {
	ts := newFakeRegistry(t)
	defer ts.Close()

	c := New(ts.URL, "")
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		resp, err := c.List(ctx)
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "proto", resp.Data[0].Name)
	})

	t.Run("versions", func(t *testing.T) {
		resp, err := c.GetVersions(ctx, "proto")
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", resp.Latest)
	})

	t.Run("records", func(t *testing.T) {
		records, err := c.GetRecords(ctx, "proto", "latest")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Unauthorized(address)", records[0].Signature)
	})

	t.Run("lookup hit", func(t *testing.T) {
		record, err := c.LookupSelector(ctx, "proto", "latest", "0x8e4a23d6")
		require.NoError(t, err)
		assert.Equal(t, "Unauthorized", record.Name)
	})

	t.Run("lookup miss surfaces API error", func(t *testing.T) {
		_, err := c.LookupSelector(ctx, "proto", "latest", "0xffffffff")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "SELECTOR_NOT_FOUND", apiErr.Code)
	})
}

func TestClientPublish(t *testing.T) {
	ts := newFakeRegistry(t)
	defer ts.Close()
	ctx := context.Background()

	t.Run("with key", func(t *testing.T) {
		c := New(ts.URL, "edx_key_test")
		result, err := c.Publish(ctx, "proto", PublishRequest{Records: []Record{{Name: "Locked", Signature: "Locked()"}}})
		require.NoError(t, err)
		assert.Equal(t, "0.1.0", result.Version)
		assert.Equal(t, 1, result.RecordCount)
	})

	t.Run("without key", func(t *testing.T) {
		c := New(ts.URL, "")
		_, err := c.Publish(ctx, "proto", PublishRequest{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	})
}

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/metrics", "/metrics"},
		{"/api/v1/databases", "/api/v1/databases"},
		{"/api/v1/databases/", "/api/v1/databases"},
		{"/api/v1/databases/proto", "/api/v1/databases/{name}"},
		{"/api/v1/databases/proto/1.0.0", "/api/v1/databases/{name}/{version}"},
		{"/api/v1/databases/proto/latest/records", "/api/v1/databases/{name}/{version}/records"},
		{"/api/v1/databases/proto/latest/selectors/0x8e4a23d6", "/api/v1/databases/{name}/{version}/selectors/{selector}"},
		{"/api/v1/databases/proto/1.2.3/search", "/api/v1/databases/{name}/{version}/search"},
		{"/somewhere/else", "/somewhere/else"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.path), "path %s", tt.path)
	}
}

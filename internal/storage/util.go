package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// generateID generates a new UUID
func generateID() string {
	return uuid.New().String()
}

// generateAPIKey generates a new API key
func generateAPIKey() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return fmt.Sprintf("edx_key_%s", hex.EncodeToString(b))
}

// hashAPIKey hashes an API key for storage
func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// marshalStrings serializes a string slice column, keeping empty slices
// distinct from SQL NULL.
func marshalStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

// unmarshalStrings is the inverse of marshalStrings. Broken or empty
// column data yields an empty slice.
func unmarshalStrings(data string) []string {
	var values []string
	if data != "" {
		_ = json.Unmarshal([]byte(data), &values)
	}
	if values == nil {
		values = []string{}
	}
	return values
}

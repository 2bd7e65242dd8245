package abi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract(t *testing.T) {
	t.Run("picks only error entries", func(t *testing.T) {
		doc := Document{
			ABI: []Entry{
				{Type: "function", Name: "transfer", Inputs: []Parameter{{Name: "to", Type: "address"}}},
				{Type: "error", Name: "Unauthorized", Inputs: []Parameter{{Name: "caller", Type: "address"}}},
				{Type: "event", Name: "Transfer"},
				{Type: "error", Name: "Empty"},
			},
		}

		errs := Extract(doc, "out/Vault.sol/Vault.json")
		require.Len(t, errs, 2)

		assert.Equal(t, "Unauthorized", errs[0].Name)
		assert.Equal(t, "Unauthorized(address)", errs[0].Signature)
		assert.Equal(t, []string{"caller"}, errs[0].InputNames)
		assert.Equal(t, []string{"address"}, errs[0].InputTypes)

		assert.Equal(t, "Empty()", errs[1].Signature)
		assert.NotNil(t, errs[1].InputNames)
		assert.NotNil(t, errs[1].InputTypes)
		assert.Empty(t, errs[1].InputNames)
	})

	t.Run("no abi array yields nothing", func(t *testing.T) {
		assert.Empty(t, Extract(Document{ContractName: "Vault"}, "Vault.json"))
	})

	t.Run("preserves exact type text", func(t *testing.T) {
		doc := Document{
			ABI: []Entry{
				{Type: "error", Name: "BadAmount", Inputs: []Parameter{{Name: "amount", Type: "uint"}}},
			},
		}

		errs := Extract(doc, "x.json")
		require.Len(t, errs, 1)
		// "uint" stays "uint", it is not rewritten to "uint256".
		assert.Equal(t, "BadAmount(uint)", errs[0].Signature)
	})
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		path string
		want string
	}{
		{
			name: "contractName wins",
			doc:  Document{ContractName: "ACL", SourceName: "contracts/ACL.sol"},
			path: "out/Other.sol/Other.json",
			want: "ACL",
		},
		{
			name: "sourceName basename",
			doc:  Document{SourceName: "contracts/access/ACL.sol"},
			path: "artifacts/contracts/access/ACL.sol/ACL.json",
			want: "ACL.sol",
		},
		{
			name: "first .sol path segment",
			doc:  Document{},
			path: "out/Ownable.sol/Ownable.json",
			want: "Ownable.sol",
		},
		{
			name: "unknown",
			doc:  Document{},
			path: "build/Ownable.json",
			want: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveSource(tt.doc, tt.path))
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ExtractFile(filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeArtifact(t, dir, "bad.json", "{not json")
		_, err := ExtractFile(path)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("valid artifact", func(t *testing.T) {
		path := writeArtifact(t, dir, filepath.Join("out", "Token.sol", "Token.json"),
			`{"abi":[{"type":"error","name":"InsufficientBalance","inputs":[{"name":"needed","type":"uint256"},{"name":"available","type":"uint256"}]}]}`)

		errs, err := ExtractFile(path)
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, "InsufficientBalance(uint256,uint256)", errs[0].Signature)
		assert.Equal(t, "Token.sol", errs[0].Source)
	})

	t.Run("object without abi", func(t *testing.T) {
		path := writeArtifact(t, dir, "meta.json", `{"version":1}`)
		errs, err := ExtractFile(path)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})
}

func TestExtractBatch(t *testing.T) {
	dir := t.TempDir()

	first := writeArtifact(t, dir, filepath.Join("out", "A.sol", "A.json"),
		`{"abi":[{"type":"error","name":"Unauthorized","inputs":[]}]}`)
	second := writeArtifact(t, dir, filepath.Join("out", "B.sol", "B.json"),
		`{"abi":[{"type":"error","name":"Unauthorized","inputs":[]},{"type":"error","name":"Locked","inputs":[]}]}`)

	t.Run("first occurrence wins", func(t *testing.T) {
		errs, err := ExtractBatch([]string{first, second})
		require.NoError(t, err)
		require.Len(t, errs, 2)
		assert.Equal(t, "Unauthorized()", errs[0].Signature)
		assert.Equal(t, "A.sol", errs[0].Source)
		assert.Equal(t, "Locked()", errs[1].Signature)
	})

	t.Run("order decides the winner", func(t *testing.T) {
		errs, err := ExtractBatch([]string{second, first})
		require.NoError(t, err)
		require.Len(t, errs, 2)
		assert.Equal(t, "B.sol", errs[0].Source)
	})

	t.Run("fails fast on a bad file", func(t *testing.T) {
		bad := writeArtifact(t, dir, "broken.json", "nope")
		_, err := ExtractBatch([]string{first, bad, second})
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("empty input", func(t *testing.T) {
		errs, err := ExtractBatch(nil)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})
}

package errordb

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roeezolantz/errdex/internal/abi"
)

func TestAttach(t *testing.T) {
	extracted := []abi.ExtractedError{
		{Name: "Unauthorized", Signature: "Unauthorized(address)", InputNames: []string{"caller"}, InputTypes: []string{"address"}, Source: "Ownable.sol"},
		{Name: "Locked", Signature: "Locked()", InputNames: []string{}, InputTypes: []string{}, Source: "Vault.sol"},
	}

	records := Attach(extracted)
	require.Len(t, records, 2)

	assert.Equal(t, "Unauthorized", records[0].Name)
	assert.Regexp(t, `^0x[0-9a-f]{8}$`, records[0].Selector)
	assert.Equal(t, []string{"caller"}, records[0].Inputs)

	// Order in == order out.
	assert.Equal(t, "Locked", records[1].Name)

	t.Run("nil input slices become empty", func(t *testing.T) {
		records := Attach([]abi.ExtractedError{{Name: "Bare", Signature: "Bare()", Source: "X.sol"}})
		require.Len(t, records, 1)
		assert.NotNil(t, records[0].Inputs)
		assert.NotNil(t, records[0].InputTypes)
	})
}

func TestBuildSortsBySelector(t *testing.T) {
	records := Build([]abi.ExtractedError{
		{Name: "C", Signature: "C()"},
		{Name: "A", Signature: "A()"},
		{Name: "B", Signature: "B()"},
	})
	require.Len(t, records, 3)

	for i := 1; i < len(records); i++ {
		assert.LessOrEqual(t, records[i-1].Selector, records[i].Selector)
	}
}

func TestSummarizeBySource(t *testing.T) {
	records := []Record{
		{Name: "A", Source: "Vault.sol"},
		{Name: "B", Source: "ACL.sol"},
		{Name: "C", Source: "Vault.sol"},
	}

	summary := SummarizeBySource(records)
	require.Len(t, summary, 2)
	assert.Equal(t, SourceCount{Source: "ACL.sol", Count: 1}, summary[0])
	assert.Equal(t, SourceCount{Source: "Vault.sol", Count: 2}, summary[1])

	assert.Empty(t, SummarizeBySource(nil))
}

func TestFindBySelector(t *testing.T) {
	records := []Record{
		{Name: "A", Selector: "0x11111111"},
		{Name: "B", Selector: "0xaaaaaaaa"},
	}

	got, err := FindBySelector(records, "0xaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	_, err = FindBySelector(records, "0x22222222")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchByName(t *testing.T) {
	records := []Record{
		{Name: "Unauthorized"},
		{Name: "InsufficientBalance"},
		{Name: "AuthExpired"},
	}

	got := SearchByName(records, "auth")
	require.Len(t, got, 2)
	assert.Equal(t, "Unauthorized", got[0].Name)
	assert.Equal(t, "AuthExpired", got[1].Name)

	assert.Empty(t, SearchByName(records, "missing"))
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.json")

	records := Build([]abi.ExtractedError{
		{Name: "Unauthorized", Signature: "Unauthorized(address)", InputNames: []string{"caller"}, InputTypes: []string{"address"}, Source: "Ownable.sol"},
		{Name: "Locked", Signature: "Locked()", InputNames: []string{}, InputTypes: []string{}, Source: "Vault.sol"},
	})

	require.NoError(t, Save(path, records))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestRecordJSONShape(t *testing.T) {
	record := Record{
		Name:       "Locked",
		Signature:  "Locked()",
		Inputs:     []string{},
		InputTypes: []string{},
		Source:     "Vault.sol",
		Selector:   "0x12345678",
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	// Empty slices must serialize as arrays, never null.
	assert.JSONEq(t, `{
		"name": "Locked",
		"signature": "Locked()",
		"inputs": [],
		"inputTypes": [],
		"source": "Vault.sol",
		"selector": "0x12345678"
	}`, string(data))
}

package builders

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("// placeholder\n"), 0o644))
}

func TestRegistryDetect(t *testing.T) {
	registry := DefaultRegistry()

	t.Run("foundry", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "foundry.toml")

		b, err := registry.Detect(dir)
		require.NoError(t, err)
		assert.Equal(t, "foundry", b.Name())
	})

	t.Run("hardhat js", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "hardhat.config.js")

		b, err := registry.Detect(dir)
		require.NoError(t, err)
		assert.Equal(t, "hardhat", b.Name())
	})

	t.Run("hardhat ts", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "hardhat.config.ts")

		b, err := registry.Detect(dir)
		require.NoError(t, err)
		assert.Equal(t, "hardhat", b.Name())
	})

	t.Run("solc fallback on loose sources", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, filepath.Join("contracts", "Vault.sol"))

		b, err := registry.Detect(dir)
		require.NoError(t, err)
		assert.Equal(t, "solc", b.Name())
	})

	t.Run("foundry wins over loose sources", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "foundry.toml")
		touch(t, dir, filepath.Join("src", "Vault.sol"))

		b, err := registry.Detect(dir)
		require.NoError(t, err)
		assert.Equal(t, "foundry", b.Name())
	})

	t.Run("nothing detected", func(t *testing.T) {
		_, err := registry.Detect(t.TempDir())
		assert.Error(t, err)
	})
}

func TestRegistryGet(t *testing.T) {
	registry := DefaultRegistry()

	b, ok := registry.Get("hardhat")
	require.True(t, ok)
	assert.Equal(t, "Hardhat", b.DisplayName())

	_, ok = registry.Get("truffle")
	assert.False(t, ok)
}

func TestArtifactDirs(t *testing.T) {
	t.Run("foundry", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, []string{filepath.Join(dir, "out")}, NewFoundry().ArtifactDirs(dir))
	})

	t.Run("hardhat prefers artifacts/contracts", func(t *testing.T) {
		dir := t.TempDir()
		assert.Equal(t, []string{filepath.Join(dir, "artifacts")}, NewHardhat().ArtifactDirs(dir))

		require.NoError(t, os.MkdirAll(filepath.Join(dir, "artifacts", "contracts"), 0o755))
		assert.Equal(t, []string{filepath.Join(dir, "artifacts", "contracts")}, NewHardhat().ArtifactDirs(dir))
	})
}

func TestSolcSourceFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Vault.sol")
	touch(t, dir, filepath.Join("contracts", "ACL.sol"))
	touch(t, dir, filepath.Join("node_modules", "dep", "Dep.sol"))
	touch(t, dir, filepath.Join("lib", "forge-std", "Test.sol"))
	touch(t, dir, "README.md")

	files, err := NewSolc().sourceFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Vault.sol", "contracts/ACL.sol"}, files)
}

func TestSolcWriteArtifacts(t *testing.T) {
	dir := t.TempDir()

	output := []byte(`{
		"contracts": {
			"contracts/Vault.sol:Vault": {
				"abi": [{"type":"error","name":"Locked","inputs":[]}]
			}
		},
		"version": "0.8.28+commit.7893614a"
	}`)

	require.NoError(t, NewSolc().writeArtifacts(dir, output))

	data, err := os.ReadFile(filepath.Join(dir, "out", "errdex-solc", "Vault.json"))
	require.NoError(t, err)

	var artifact struct {
		ContractName string          `json:"contractName"`
		SourceName   string          `json:"sourceName"`
		ABI          json.RawMessage `json:"abi"`
	}
	require.NoError(t, json.Unmarshal(data, &artifact))
	assert.Equal(t, "Vault", artifact.ContractName)
	assert.Equal(t, "contracts/Vault.sol", artifact.SourceName)
	assert.JSONEq(t, `[{"type":"error","name":"Locked","inputs":[]}]`, string(artifact.ABI))
}

func TestSolcWriteArtifactsStringABI(t *testing.T) {
	dir := t.TempDir()

	output := []byte(`{
		"contracts": {
			"Vault.sol:Vault": {
				"abi": "[{\"type\":\"error\",\"name\":\"Locked\",\"inputs\":[]}]"
			}
		}
	}`)

	require.NoError(t, NewSolc().writeArtifacts(dir, output))

	data, err := os.ReadFile(filepath.Join(dir, "out", "errdex-solc", "Vault.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Locked"`)
}

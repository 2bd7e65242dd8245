package builders

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// solcOutDir is where solc-compiled artifacts are written, relative to
// the project directory.
const solcOutDir = "out/errdex-solc"

// Solc compiles loose .sol files directly with the solc binary. It is the
// fallback for projects without a foundry or hardhat setup.
type Solc struct{}

// NewSolc creates a new solc builder.
func NewSolc() *Solc {
	return &Solc{}
}

func (b *Solc) Name() string        { return "solc" }
func (b *Solc) DisplayName() string { return "solc" }

// ConfigFile returns "" since solc projects have no marker file.
func (b *Solc) ConfigFile() string { return "" }

// Detect checks for any .sol file under dir.
func (b *Solc) Detect(dir string) (bool, error) {
	files, err := b.sourceFiles(dir)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// Compile runs solc over every discovered source and writes one
// hardhat-shaped artifact per contract into out/errdex-solc, so the
// regular discovery walk can consume them.
func (b *Solc) Compile(ctx context.Context, dir string) (*CompileResult, error) {
	result := &CompileResult{ArtifactDirs: b.ArtifactDirs(dir)}

	sources, err := b.sourceFiles(dir)
	if err != nil {
		return result, err
	}
	if len(sources) == 0 {
		return result, fmt.Errorf("no .sol files found in %s", dir)
	}

	args := append([]string{"--combined-json", "abi"}, sources...)
	cmd := exec.CommandContext(ctx, "solc", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	result.Output = string(output)
	if err != nil {
		return result, fmt.Errorf("solc failed: %w", err)
	}

	if err := b.writeArtifacts(dir, output); err != nil {
		return result, err
	}

	result.Success = true
	return result, nil
}

// ArtifactDirs returns the synthesized artifact directory.
func (b *Solc) ArtifactDirs(dir string) []string {
	return []string{filepath.Join(dir, filepath.FromSlash(solcOutDir))}
}

// sourceFiles collects .sol files under dir, skipping dependency and
// build output directories.
func (b *Solc) sourceFiles(dir string) ([]string, error) {
	skip := map[string]bool{
		"node_modules": true,
		"lib":          true,
		"out":          true,
		"artifacts":    true,
		"cache":        true,
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (skip[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".sol") {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	return files, err
}

// combinedOutput models solc --combined-json output. Keys of Contracts
// are "source.sol:ContractName".
type combinedOutput struct {
	Contracts map[string]struct {
		ABI json.RawMessage `json:"abi"`
	} `json:"contracts"`
}

func (b *Solc) writeArtifacts(dir string, output []byte) error {
	var combined combinedOutput
	if err := json.Unmarshal(output, &combined); err != nil {
		return fmt.Errorf("parsing solc output: %w", err)
	}

	outDir := filepath.Join(dir, filepath.FromSlash(solcOutDir))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for key, contract := range combined.Contracts {
		sourceName, contractName, ok := strings.Cut(key, ":")
		if !ok {
			continue
		}

		abi := contract.ABI
		// Older solc releases emit the abi as an escaped string.
		if len(abi) > 0 && abi[0] == '"' {
			var inner string
			if err := json.Unmarshal(abi, &inner); err != nil {
				return fmt.Errorf("parsing abi for %s: %w", key, err)
			}
			abi = json.RawMessage(inner)
		}

		artifact := map[string]any{
			"contractName": contractName,
			"sourceName":   sourceName,
			"abi":          abi,
		}
		data, err := json.MarshalIndent(artifact, "", "  ")
		if err != nil {
			return err
		}

		path := filepath.Join(outDir, contractName+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing artifact %s: %w", path, err)
		}
	}

	return nil
}

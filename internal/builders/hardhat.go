package builders

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// Hardhat compiles projects with npx hardhat.
type Hardhat struct{}

// NewHardhat creates a new Hardhat builder.
func NewHardhat() *Hardhat {
	return &Hardhat{}
}

func (b *Hardhat) Name() string        { return "hardhat" }
func (b *Hardhat) DisplayName() string { return "Hardhat" }
func (b *Hardhat) ConfigFile() string  { return "hardhat.config.js" }

// Detect checks for a hardhat config, JavaScript or TypeScript.
func (b *Hardhat) Detect(dir string) (bool, error) {
	for _, name := range []string{"hardhat.config.js", "hardhat.config.ts"} {
		_, err := os.Stat(filepath.Join(dir, name))
		if err == nil {
			return true, nil
		}
		if !os.IsNotExist(err) {
			return false, err
		}
	}
	return false, nil
}

// Compile runs npx hardhat compile in dir.
func (b *Hardhat) Compile(ctx context.Context, dir string) (*CompileResult, error) {
	cmd := exec.CommandContext(ctx, "npx", "hardhat", "compile")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()

	result := &CompileResult{
		ArtifactDirs: b.ArtifactDirs(dir),
		Success:      err == nil,
		Output:       string(output),
	}
	return result, err
}

// ArtifactDirs prefers artifacts/contracts, where hardhat keeps project
// artifacts, and falls back to artifacts/ for nonstandard layouts.
func (b *Hardhat) ArtifactDirs(dir string) []string {
	contracts := filepath.Join(dir, "artifacts", "contracts")
	if _, err := os.Stat(contracts); err == nil {
		return []string{contracts}
	}
	return []string{filepath.Join(dir, "artifacts")}
}

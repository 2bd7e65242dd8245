package builders

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
)

// Foundry compiles projects with forge.
type Foundry struct{}

// NewFoundry creates a new Foundry builder.
func NewFoundry() *Foundry {
	return &Foundry{}
}

func (b *Foundry) Name() string        { return "foundry" }
func (b *Foundry) DisplayName() string { return "Foundry" }
func (b *Foundry) ConfigFile() string  { return "foundry.toml" }

// Detect checks if a directory is a Foundry project.
func (b *Foundry) Detect(dir string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, b.ConfigFile()))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Compile runs forge build in dir.
func (b *Foundry) Compile(ctx context.Context, dir string) (*CompileResult, error) {
	cmd := exec.CommandContext(ctx, "forge", "build")
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()

	result := &CompileResult{
		ArtifactDirs: b.ArtifactDirs(dir),
		Success:      err == nil,
		Output:       string(output),
	}
	return result, err
}

// ArtifactDirs returns forge's output directory.
func (b *Foundry) ArtifactDirs(dir string) []string {
	return []string{filepath.Join(dir, "out")}
}

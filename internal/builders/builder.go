// Package builders abstracts the Solidity toolchains that compile
// projects into ABI artifacts.
package builders

import (
	"context"
	"fmt"
)

// CompileResult reports the outcome of a toolchain run.
type CompileResult struct {
	// ArtifactDirs are the directories where the toolchain left its
	// artifacts, ready for discovery.
	ArtifactDirs []string
	Success      bool
	// Output is the combined stdout/stderr of the toolchain, kept for
	// diagnostics when a build fails.
	Output string
}

// Builder compiles a project with a specific Solidity toolchain.
type Builder interface {
	Name() string        // "foundry", "hardhat", "solc"
	DisplayName() string // "Foundry", "Hardhat", "solc"
	ConfigFile() string

	Detect(dir string) (bool, error)
	Compile(ctx context.Context, dir string) (*CompileResult, error)

	// ArtifactDirs returns where this toolchain's artifacts live under
	// dir, whether or not Compile was just run.
	ArtifactDirs(dir string) []string
}

// Registry holds the known builders in detection priority order.
type Registry struct {
	builders []Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with all built-in builders. Foundry
// is tried before hardhat, solc last as the loose-files fallback.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewFoundry())
	r.Register(NewHardhat())
	r.Register(NewSolc())
	return r
}

// Register appends a builder to the registry.
func (r *Registry) Register(b Builder) {
	r.builders = append(r.builders, b)
}

// List returns the registered builders in priority order.
func (r *Registry) List() []Builder {
	return r.builders
}

// Get retrieves a builder by name.
func (r *Registry) Get(name string) (Builder, bool) {
	for _, b := range r.builders {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Detect returns the first builder whose project markers are present
// in dir.
func (r *Registry) Detect(dir string) (Builder, error) {
	for _, b := range r.builders {
		ok, err := b.Detect(dir)
		if err != nil {
			return nil, err
		}
		if ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no supported builder detected in %s", dir)
}

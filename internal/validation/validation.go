// Package validation provides input validation for errdex.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Database name validation
// Simple names: lowercase alphanumeric with hyphens, 2-64 chars
var databaseNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{0,62}[a-z0-9]$`)

// ValidateDatabaseName validates a published database name.
func ValidateDatabaseName(name string) error {
	if len(name) < 2 {
		return errors.New("database name too short (min 2 chars)")
	}
	if len(name) > 64 {
		return errors.New("database name too long (max 64 chars)")
	}
	if !databaseNameRegex.MatchString(name) {
		return errors.New("invalid database name: must be lowercase alphanumeric with hyphens, starting with a letter")
	}
	if strings.Contains(name, "--") {
		return errors.New("invalid characters in database name")
	}
	return nil
}

// ValidateVersion validates a semantic version string.
func ValidateVersion(v string) error {
	normalized := strings.TrimPrefix(v, "v")
	if normalized == "" {
		return errors.New("version cannot be empty")
	}

	// The semver library expects versions to start with 'v'.
	if !semver.IsValid("v" + normalized) {
		return errors.New("invalid semver version: must be in format X.Y.Z or X.Y.Z-prerelease")
	}

	// Require all of major.minor.patch, not just major or major.minor.
	mainPart := strings.SplitN(normalized, "-", 2)[0]
	if strings.Count(mainPart, ".") < 2 {
		return errors.New("invalid semver version: must be in format X.Y.Z (major.minor.patch)")
	}

	return nil
}

// NormalizeVersion normalizes a version string (strips leading 'v').
func NormalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// CompareVersions compares two versions.
// Returns -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2.
func CompareVersions(v1, v2 string) int {
	return semver.Compare("v"+NormalizeVersion(v1), "v"+NormalizeVersion(v2))
}

// ResolveLatest finds the latest version from a list.
func ResolveLatest(versions []string) string {
	if len(versions) == 0 {
		return ""
	}

	latest := versions[0]
	for _, v := range versions[1:] {
		if CompareVersions(v, latest) > 0 {
			latest = v
		}
	}
	return latest
}

// BumpPatch returns v with its patch component incremented and any
// prerelease suffix dropped.
func BumpPatch(v string) (string, error) {
	if err := ValidateVersion(v); err != nil {
		return "", err
	}

	mainPart := strings.SplitN(NormalizeVersion(v), "-", 2)[0]
	parts := strings.Split(mainPart, ".")
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("invalid patch component in %q: %w", v, err)
	}

	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1), nil
}

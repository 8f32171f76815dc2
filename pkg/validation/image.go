// Package validation provides input validation for image references and
// build parameters before they are handed to the engine or the registry.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/distribution/reference"
)

// Repository name validation per Docker spec:
// - Lowercase letters, digits, and separators (., _, -)
// - Separators must not be adjacent and cannot start/end the name
// - Allows nested paths like "myorg/myapp"
var repoNameRegex = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*(?:/[a-z0-9]+(?:[._-][a-z0-9]+)*)*$`)

// Tag validation per Docker spec:
// - Case-sensitive alphanumeric (both uppercase and lowercase allowed)
// - Dots, underscores, and hyphens allowed after first character
// - Must start with an alphanumeric character or underscore
// - Max 128 characters
var tagRegex = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}$`)

// Digest validation for content-addressable references:
// - Format: algorithm:hex
// - Supported algorithms: sha256 (64 hex chars), sha512 (128 hex chars)
var digestRegex = regexp.MustCompile(`^(sha256:[a-f0-9]{64}|sha512:[a-f0-9]{128})$`)

// Build arg validation: KEY=VALUE where KEY is a valid env var name.
var buildArgPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*=`)

// MaxRepositoryNameLength is the maximum allowed length for repository names.
const MaxRepositoryNameLength = 256

// ImageRef is a parsed, normalized image reference.
type ImageRef struct {
	// Domain is the registry hostname (possibly with port), e.g.
	// "registry.example.com:5000". Empty input domains normalize to
	// "docker.io".
	Domain string
	// Path is the repository path, e.g. "myorg/myapp".
	Path string
	// Tag is the tag portion; defaults to "latest" when absent.
	Tag string
	// Digest is set instead of Tag for digest references.
	Digest string
}

// String reassembles the reference in familiar (shortest unambiguous) form.
func (r ImageRef) String() string {
	s := r.Path
	if r.Domain != "" && r.Domain != "docker.io" {
		s = r.Domain + "/" + s
	}
	if r.Digest != "" {
		return s + "@" + r.Digest
	}
	if r.Tag != "" {
		return s + ":" + r.Tag
	}
	return s
}

// ParseImageRef parses an image reference using the distribution grammar
// and normalizes it. A missing tag defaults to "latest".
func ParseImageRef(s string) (ImageRef, error) {
	if s == "" {
		return ImageRef{}, fmt.Errorf("image reference cannot be empty")
	}

	named, err := reference.ParseNormalizedNamed(s)
	if err != nil {
		return ImageRef{}, fmt.Errorf("invalid image reference %q: %w", s, err)
	}

	ref := ImageRef{
		Domain: reference.Domain(named),
		Path:   reference.Path(named),
	}

	if digested, ok := named.(reference.Digested); ok {
		ref.Digest = digested.Digest().String()
		return ref, nil
	}

	if tagged, ok := named.(reference.Tagged); ok {
		ref.Tag = tagged.Tag()
	} else {
		ref.Tag = "latest"
	}

	return ref, nil
}

// ValidateRepositoryName validates a Docker repository name.
func ValidateRepositoryName(name string) error {
	if name == "" {
		return fmt.Errorf("repository name cannot be empty")
	}

	if len(name) > MaxRepositoryNameLength {
		return fmt.Errorf("repository name too long: %d chars (max %d)", len(name), MaxRepositoryNameLength)
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("repository name contains path traversal sequence")
	}

	if !repoNameRegex.MatchString(name) {
		return fmt.Errorf("invalid repository name format: must contain only lowercase letters, digits, and separators (., _, -)")
	}

	return nil
}

// ValidateTag validates a Docker tag. Digest references are accepted too so
// that a caller can pass either form.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}

	if strings.Contains(tag, "..") && !digestRegex.MatchString(tag) {
		return fmt.Errorf("tag contains path traversal sequence")
	}

	if digestRegex.MatchString(tag) {
		return nil
	}

	if !tagRegex.MatchString(tag) {
		return fmt.Errorf("invalid tag format: must be a valid tag or digest")
	}

	return nil
}

// IsDigest checks if a string is a valid content digest.
func IsDigest(digest string) bool {
	return digestRegex.MatchString(digest)
}

// ValidateBuildArg validates a KEY=VALUE build argument.
func ValidateBuildArg(arg string) error {
	if !buildArgPattern.MatchString(arg) {
		return fmt.Errorf("invalid build arg %q: must match KEY=VALUE where KEY is [a-zA-Z_][a-zA-Z0-9_]*", arg)
	}
	return nil
}

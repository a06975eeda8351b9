package cache

import (
	"path/filepath"
	"slices"
)

// Keyer builds cache keys.
type Keyer interface {
	// ScanKey identifies a scan of the directory at root.
	ScanKey(root string, opts ScanKeyOpts) string

	// ArtifactKey identifies rendered output of a tree with the given
	// [Fingerprint].
	ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string
}

// ScanKeyOpts holds the scan options that change the resulting tree.
type ScanKeyOpts struct {
	Exclude []string `json:"exclude,omitempty"`
}

// ArtifactKeyOpts holds the render options that change the output bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Popups bool    `json:"popups,omitempty"`
	Labels bool    `json:"labels,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ScanKey hashes the cleaned root path and the sorted exclusion patterns, so
// pattern order does not matter.
func (DefaultKeyer) ScanKey(root string, opts ScanKeyOpts) string {
	exclude := slices.Clone(opts.Exclude)
	slices.Sort(exclude)
	opts.Exclude = slices.Compact(exclude)
	return hashKey("scan", filepath.Clean(root), opts)
}

// ArtifactKey hashes the fingerprint with the render options.
func (DefaultKeyer) ArtifactKey(fingerprint string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", fingerprint, opts)
}

var _ Keyer = DefaultKeyer{}

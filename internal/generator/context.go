package generator

import (
	"mrgen/internal/fetch"
	"mrgen/internal/filter"
)

// GeneratorContext is everything needed to fetch one scope's terms during a
// single generation. It is built by the resolver and not modified after.
type GeneratorContext struct {
	OwnerRepo   string
	Scopetag    string
	Scopedir    string
	RootDirPath string
	VersionTag  string
	CuratedDir  string
	Location    fetch.Location

	AddFilters    []filter.Filter
	RemoveFilters []filter.Filter
}

// newContext builds the context of a scope found at loc. Filters are set by
// the caller.
func newContext(scopetag, scopedir string, loc fetch.Location, versionTag, curatedDir string) *GeneratorContext {
	return &GeneratorContext{
		OwnerRepo:   loc.OwnerRepo(),
		Scopetag:    scopetag,
		Scopedir:    scopedir,
		RootDirPath: loc.Root,
		VersionTag:  versionTag,
		CuratedDir:  curatedDir,
		Location:    loc,
	}
}

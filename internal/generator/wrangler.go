package generator

// wrangler.go: The scope context resolver.
//
// The Wrangler fetches SAFs, turns a root SAF into one GeneratorContext per
// scope (the root and every scope in its scopes list), and fetches the
// curated terms of a context.
//
// Only the root's declared scopes are resolved: a referenced scope's own
// scopes list is not followed, and a scopetag is resolved at most once, so
// scopes that reference each other cannot loop.

import (
	"context"
	"fmt"
	"path"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mrgen/internal/fetch"
	"mrgen/internal/filter"
	"mrgen/internal/model"
	"mrgen/internal/parse"
)

// Resolver is the capability the Generator drives.
type Resolver interface {
	// GetSAF fetches and parses the SAF named safFilename in scopedir.
	GetSAF(ctx context.Context, scopedir, safFilename string) (*model.SAF, error)

	// BuildContextMap returns a context for every scopetag reachable from
	// saf, keyed by scopetag. Aliases of one scope share a context.
	BuildContextMap(ctx context.Context, scopedir string, saf *model.SAF, versionTag string) (map[string]*GeneratorContext, error)

	// FetchTerms returns the curated terms of gctx that survive the filters,
	// in listing order.
	FetchTerms(ctx context.Context, gctx *GeneratorContext, add, remove []filter.Filter) ([]model.Term, error)
}

// Wrangler is the Resolver backed by a fetch.Fetcher.
type Wrangler struct {
	fetcher fetch.Fetcher
	opts    options
}

var _ Resolver = (*Wrangler)(nil)

// NewWrangler returns a Wrangler reading through f.
func NewWrangler(f fetch.Fetcher, opts ...Option) *Wrangler {
	return &Wrangler{fetcher: f, opts: buildOptions(opts)}
}

// GetSAF fetches and parses a SAF. Fetch and parse errors are returned
// unchanged.
func (w *Wrangler) GetSAF(ctx context.Context, scopedir, safFilename string) (*model.SAF, error) {
	loc, err := fetch.ParseScopedir(scopedir)
	if err != nil {
		return nil, err
	}
	raw, err := w.fetcher.ReadFile(ctx, loc, safFilename)
	if err != nil {
		return nil, err
	}
	return parse.ParseSAF(raw)
}

// BuildContextMap resolves the root scope at scopedir and each scope saf
// references. Any referenced scope that cannot be resolved fails the whole
// call with a *ScopeResolutionError and no map.
func (w *Wrangler) BuildContextMap(ctx context.Context, scopedir string, saf *model.SAF, versionTag string) (map[string]*GeneratorContext, error) {
	version, ok := saf.FindVersion(versionTag)
	if !ok {
		return nil, &UnknownVersionError{Tag: versionTag}
	}
	rootTag := saf.Scope.Scopetag
	sels, err := filter.ParseCriteria(version.Termselcrit, rootTag)
	if err != nil {
		return nil, fmt.Errorf("version %s: %w", version.Vsntag, err)
	}
	if err := checkCriteriaScopes(saf, sels); err != nil {
		return nil, err
	}

	if saf.Scope.Curatedir == "" {
		return nil, ErrMissingCuratedDirectory
	}
	loc, err := fetch.ParseScopedir(scopedir)
	if err != nil {
		return nil, err
	}
	rootTags, refs := groupRefs(saf)
	root := newContext(rootTag, scopedir, loc, version.Vsntag, saf.Scope.Curatedir)
	applySelection(root, mergeSelections(sels, rootTags))

	contexts := make(map[string]*GeneratorContext)
	for _, tag := range rootTags {
		contexts[tag] = root
	}

	resolved := make([]*GeneratorContext, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.concurrency())
	for i, ref := range refs {
		g.Go(func() error {
			c, err := w.resolveRef(gctx, ref, mergeSelections(sels, ref.Scopetags))
			if err != nil {
				return &ScopeResolutionError{Scopetag: ref.Primary(), Err: err}
			}
			resolved[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, ref := range refs {
		for _, tag := range ref.Scopetags {
			contexts[tag] = resolved[i]
		}
	}

	w.opts.logger.Debug("built context map",
		zap.String("scope", rootTag),
		zap.String("version", version.Vsntag),
		zap.Int("scopes", len(refs)+1))
	return contexts, nil
}

// resolveRef fetches a referenced scope's SAF and builds its context.
func (w *Wrangler) resolveRef(ctx context.Context, ref model.ScopeRef, sel *filter.Selection) (*GeneratorContext, error) {
	refSAF, err := w.GetSAF(ctx, ref.Scopedir, w.opts.safName())
	if err != nil {
		return nil, err
	}
	loc, err := fetch.ParseScopedir(ref.Scopedir)
	if err != nil {
		return nil, err
	}

	if refSAF.Scope.Curatedir == "" {
		return nil, ErrMissingCuratedDirectory
	}

	vsntag := refSAF.Scope.Defaultvsn
	if sel != nil && sel.Vsntag != "" {
		v, ok := refSAF.FindVersion(sel.Vsntag)
		if !ok {
			return nil, &UnknownVersionError{Tag: sel.Vsntag}
		}
		vsntag = v.Vsntag
	}

	c := newContext(ref.Primary(), ref.Scopedir, loc, vsntag, refSAF.Scope.Curatedir)
	applySelection(c, sel)
	return c, nil
}

// groupRefs folds saf's scopes into the scopes to resolve. An entry that
// shares a scopetag with the root or an earlier entry is not resolved again;
// its other scopetags become aliases of the scope it overlaps. rootTags holds
// the root's scopetag and any aliases it gained that way.
func groupRefs(saf *model.SAF) (rootTags []string, refs []model.ScopeRef) {
	const root = -1
	owner := map[string]int{saf.Scope.Scopetag: root}
	rootTags = []string{saf.Scope.Scopetag}
	for _, ref := range saf.Scopes {
		at, dup := 0, false
		for _, tag := range ref.Scopetags {
			if i, ok := owner[tag]; ok {
				at, dup = i, true
				break
			}
		}
		if !dup {
			refs = append(refs, model.ScopeRef{Scopedir: ref.Scopedir})
			at = len(refs) - 1
		}
		for _, tag := range ref.Scopetags {
			if _, ok := owner[tag]; ok {
				continue
			}
			owner[tag] = at
			if at == root {
				rootTags = append(rootTags, tag)
			} else {
				refs[at].Scopetags = append(refs[at].Scopetags, tag)
			}
		}
	}
	return rootTags, refs
}

// checkCriteriaScopes rejects criteria for scopetags the SAF does not know.
func checkCriteriaScopes(saf *model.SAF, sels map[string]*filter.Selection) error {
	known := map[string]bool{saf.Scope.Scopetag: true}
	for _, ref := range saf.Scopes {
		for _, tag := range ref.Scopetags {
			known[tag] = true
		}
	}
	for tag := range sels {
		if !known[tag] {
			return &ScopeResolutionError{Scopetag: tag, Err: ErrUnknownScope}
		}
	}
	return nil
}

// mergeSelections combines the selections of every alias of one scope.
func mergeSelections(sels map[string]*filter.Selection, tags []string) *filter.Selection {
	var out *filter.Selection
	for _, tag := range tags {
		s := sels[tag]
		if s == nil {
			continue
		}
		if out == nil {
			out = &filter.Selection{}
		}
		out.Add = append(out.Add, s.Add...)
		out.Remove = append(out.Remove, s.Remove...)
		if out.Vsntag == "" {
			out.Vsntag = s.Vsntag
		}
	}
	return out
}

// applySelection sets the context filters. A scope without add criteria
// accepts every term.
func applySelection(c *GeneratorContext, sel *filter.Selection) {
	c.AddFilters = []filter.Filter{filter.All()}
	if sel == nil {
		return
	}
	if len(sel.Add) > 0 {
		c.AddFilters = sel.Add
	}
	c.RemoveFilters = sel.Remove
}

// FetchTerms reads every curated term file of gctx, stamps the scope and
// version onto each term, and applies the filters.
func (w *Wrangler) FetchTerms(ctx context.Context, gctx *GeneratorContext, add, remove []filter.Filter) ([]model.Term, error) {
	curated := gctx.Location.Join(gctx.CuratedDir)
	names, err := w.fetcher.ListDir(ctx, curated, "")
	if err != nil {
		return nil, err
	}
	log := w.opts.logger.With(zap.String("scope", gctx.Scopetag))

	var terms []model.Term
	for _, name := range names {
		if !parse.IsTermFile(name) {
			continue
		}
		rel := path.Join(gctx.CuratedDir, name)
		if w.opts.settings.IsExcluded(rel) {
			log.Debug("skipping excluded term file", zap.String("file", rel))
			continue
		}
		raw, err := w.fetcher.ReadFile(ctx, curated, name)
		if err != nil {
			return nil, err
		}
		t, err := parse.ParseTerm(rel, raw)
		if err != nil {
			return nil, err
		}
		t.Scopetag = gctx.Scopetag
		t.Vsntag = gctx.VersionTag
		t.Locator = rel
		terms = append(terms, t)
	}

	out := filter.Apply(terms, add, remove)
	log.Debug("fetched terms", zap.Int("read", len(terms)), zap.Int("kept", len(out)))
	return out, nil
}

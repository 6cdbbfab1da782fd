// Package generator builds a Machine-Readable Glossary (MRG) from a Scope
// Administration File: it validates the SAF, resolves a context for every
// scope the SAF reaches, fetches and filters their curated terms, and
// assembles the result.
package generator

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mrgen/internal/model"
)

// Generator produces MRGs. It holds no state between calls and may be used
// concurrently.
type Generator struct {
	resolver Resolver
	opts     options
}

// New returns a Generator driving r.
func New(r Resolver, opts ...Option) *Generator {
	return &Generator{resolver: r, opts: buildOptions(opts)}
}

// Generate builds the MRG of the scope at scopedir for versionTag, which may
// be a vsntag or one of its altvsntags. Any failure aborts the call; no
// partial MRG is returned.
func (g *Generator) Generate(ctx context.Context, scopedir, safFilename, versionTag string) (*model.MRG, error) {
	saf, err := g.resolver.GetSAF(ctx, scopedir, safFilename)
	if err != nil {
		return nil, err
	}
	return g.GenerateFromSAF(ctx, scopedir, saf, versionTag)
}

// GenerateFromSAF is Generate for a SAF the caller already fetched from
// scopedir.
func (g *Generator) GenerateFromSAF(ctx context.Context, scopedir string, saf *model.SAF, versionTag string) (*model.MRG, error) {
	log := g.opts.logger.With(zap.String("scopedir", scopedir), zap.String("version", versionTag))

	if saf.Scope.Glossarydir == "" {
		return nil, ErrMissingGlossaryDirectory
	}
	version, ok := saf.FindVersion(versionTag)
	if !ok {
		return nil, &UnknownVersionError{Tag: versionTag}
	}

	contexts, err := g.resolver.BuildContextMap(ctx, scopedir, saf, version.Vsntag)
	if err != nil {
		return nil, err
	}

	ordered := orderContexts(saf, contexts)
	results := make([][]model.Term, len(ordered))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.concurrency())
	for i, c := range ordered {
		eg.Go(func() error {
			terms, err := g.resolver.FetchTerms(egCtx, c, c.AddFilters, c.RemoveFilters)
			if err != nil {
				return err
			}
			results[i] = terms
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	entries := []model.Term{}
	for _, terms := range results {
		entries = append(entries, terms...)
	}

	mrg := &model.MRG{
		Terminology: model.Terminology{
			Scopetag: saf.Scope.Scopetag,
			Scopedir: saf.Scope.Scopedir,
		},
		Scopes: append([]model.ScopeRef(nil), saf.Scopes...),
		Versions: model.MRGVersion{
			Vsntag:     version.Vsntag,
			Altvsntags: append([]string(nil), version.Altvsntags...),
		},
		Entries: entries,
	}
	log.Info("generated MRG",
		zap.String("scope", mrg.Terminology.Scopetag),
		zap.Int("scopes", len(ordered)),
		zap.Int("entries", len(entries)))
	return mrg, nil
}

// orderContexts lists each distinct context once: the root first, then the
// referenced scopes in SAF declaration order, then any remaining contexts by
// scopetag.
func orderContexts(saf *model.SAF, contexts map[string]*GeneratorContext) []*GeneratorContext {
	var out []*GeneratorContext
	seen := make(map[*GeneratorContext]bool)
	add := func(tag string) {
		c := contexts[tag]
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}

	add(saf.Scope.Scopetag)
	for _, ref := range saf.Scopes {
		for _, tag := range ref.Scopetags {
			add(tag)
		}
	}

	rest := make([]string, 0, len(contexts))
	for tag := range contexts {
		rest = append(rest, tag)
	}
	sort.Strings(rest)
	for _, tag := range rest {
		add(tag)
	}
	return out
}

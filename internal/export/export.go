package export

// export.go: Writes a generated MRG to disk.
//
// Two outputs:
//   mrg.<scopetag>.<vsntag>.yaml   the machine-readable glossary itself
//   a markdown glossary vault      human-readable pages for the same MRG
//
// Vault layout:
//   index.md                       terminology, scopes, alphabetical term list
//   terms/<scopetag>/<term>.md     one note per entry
//
// Builders are pure; writers emit pages in sorted path order so that two
// runs over the same MRG produce byte-identical files.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mrgen/internal/frontmatter"
	"mrgen/internal/model"
)

// ---------------------------------------------------------------------------
// MRG file
// ---------------------------------------------------------------------------

// MRGFilename returns the conventional file name of an MRG.
func MRGFilename(mrg *model.MRG) string {
	return fmt.Sprintf("mrg.%s.%s.yaml", mrg.Terminology.Scopetag, mrg.Versions.Vsntag)
}

// MarshalMRG encodes mrg as YAML with two-space indentation.
func MarshalMRG(mrg *model.MRG) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(mrg); err != nil {
		return nil, fmt.Errorf("marshal mrg: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal mrg: %w", err)
	}
	return []byte(b.String()), nil
}

// WriteMRG writes mrg into dir under MRGFilename and returns the file path.
func WriteMRG(mrg *model.MRG, dir string) (string, error) {
	data, err := MarshalMRG(mrg)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, MRGFilename(mrg))
	if err := writeNote(p, string(data)); err != nil {
		return "", err
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Markdown glossary
// ---------------------------------------------------------------------------

// GlossaryBundle holds pre-generated page content (path → markdown).
// Paths are relative to the output directory, using forward slashes.
type GlossaryBundle struct {
	pages map[string]string
}

// Paths returns the page paths in sorted order.
func (b *GlossaryBundle) Paths() []string {
	paths := make([]string, 0, len(b.pages))
	for p := range b.pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Page returns the content of the page at path.
func (b *GlossaryBundle) Page(path string) (string, bool) {
	s, ok := b.pages[path]
	return s, ok
}

// termPage is the frontmatter of a term note.
type termPage struct {
	Tags     []string `yaml:"tags"`
	Term     string   `yaml:"term"`
	Scopetag string   `yaml:"scopetag"`
	Vsntag   string   `yaml:"vsntag,omitempty"`
	Locator  string   `yaml:"locator,omitempty"`
}

// GenerateGlossaryBundle builds all pages for mrg. Nothing is written.
// Two entries that map to the same note path are an error.
func GenerateGlossaryBundle(mrg *model.MRG) (*GlossaryBundle, error) {
	pages := make(map[string]string)
	for _, e := range mrg.Entries {
		p := termPath(mrg, e)
		if _, dup := pages[p]; dup {
			return nil, fmt.Errorf("duplicate glossary entry %q in scope %s", e.Term, scopeOf(mrg, e))
		}
		page, err := buildTermPage(mrg, e)
		if err != nil {
			return nil, err
		}
		pages[p] = page
	}
	pages["index.md"] = buildIndexPage(mrg)
	return &GlossaryBundle{pages: pages}, nil
}

// WriteGlossaryBundle writes all pages in bundle to outputDir in sorted path
// order. Existing files are overwritten.
func WriteGlossaryBundle(bundle *GlossaryBundle, outputDir string) error {
	if err := os.MkdirAll(filepath.Join(outputDir, "terms"), 0o755); err != nil {
		return fmt.Errorf("mkdir terms: %w", err)
	}
	for _, p := range bundle.Paths() {
		abs := filepath.Join(outputDir, filepath.FromSlash(p))
		if err := writeNote(abs, bundle.pages[p]); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Page builders
// ---------------------------------------------------------------------------

// buildIndexPage builds index.md. Terms are listed alphabetically
// (case-insensitive, scopetag breaks ties).
func buildIndexPage(mrg *model.MRG) string {
	var b strings.Builder
	b.WriteString(tagBlock([]string{"mrg/index"}))
	b.WriteString(fmt.Sprintf("# Glossary: %s\n\n", mrg.Terminology.Scopetag))
	b.WriteString(fmt.Sprintf("- **Scope directory**: %s\n", mrg.Terminology.Scopedir))
	b.WriteString(fmt.Sprintf("- **Version**: %s", mrg.Versions.Vsntag))
	if len(mrg.Versions.Altvsntags) > 0 {
		b.WriteString(fmt.Sprintf(" (%s)", strings.Join(mrg.Versions.Altvsntags, ", ")))
	}
	b.WriteString("\n\n")

	if len(mrg.Scopes) > 0 {
		b.WriteString("## Scopes\n\n")
		b.WriteString("| Scopetags | Scopedir |\n")
		b.WriteString("|-----------|----------|\n")
		for _, s := range mrg.Scopes {
			b.WriteString(fmt.Sprintf("| %s | %s |\n", strings.Join(s.Scopetags, ", "), s.Scopedir))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Terms\n\n")
	entries := append([]model.Term(nil), mrg.Entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		a, c := strings.ToLower(entries[i].Term), strings.ToLower(entries[j].Term)
		if a != c {
			return a < c
		}
		return scopeOf(mrg, entries[i]) < scopeOf(mrg, entries[j])
	})
	for _, e := range entries {
		link := strings.TrimSuffix(termPath(mrg, e), ".md")
		line := fmt.Sprintf("- [[%s|%s]] (%s)", link, e.Term, scopeOf(mrg, e))
		if e.GlossaryText != "" {
			line += ": " + e.GlossaryText
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// buildTermPage builds terms/<scopetag>/<term>.md for one entry.
func buildTermPage(mrg *model.MRG, e model.Term) (string, error) {
	tags := []string{"term", "scope/" + sanitizeFilename(scopeOf(mrg, e))}
	if e.TermType != "" {
		tags = append(tags, "type/"+sanitizeFilename(e.TermType))
	}
	if e.Status != "" {
		tags = append(tags, "status/"+sanitizeFilename(e.Status))
	}
	for _, g := range e.Grouptags {
		tags = append(tags, "group/"+sanitizeFilename(g))
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", e.Term))
	if e.GlossaryText != "" {
		b.WriteString(e.GlossaryText + "\n")
	}
	if e.Isa != "" {
		b.WriteString(fmt.Sprintf("\n**Is a**: %s\n", e.Isa))
	}
	if len(e.Synonyms) > 0 {
		b.WriteString("\n## Synonyms\n\n")
		for _, s := range e.Synonyms {
			b.WriteString("- " + s + "\n")
		}
	}
	if len(e.FormPhrases) > 0 {
		b.WriteString("\n## Form phrases\n\n")
		for _, f := range e.FormPhrases {
			b.WriteString("- " + f + "\n")
		}
	}

	data, err := frontmatter.Write(termPage{
		Tags:     tags,
		Term:     e.Term,
		Scopetag: scopeOf(mrg, e),
		Vsntag:   e.Vsntag,
		Locator:  e.Locator,
	}, b.String())
	if err != nil {
		return "", fmt.Errorf("term %q: %w", e.Term, err)
	}
	return string(data), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// scopeOf returns the entry's scopetag, defaulting to the MRG's own scope.
func scopeOf(mrg *model.MRG, e model.Term) string {
	if e.Scopetag != "" {
		return e.Scopetag
	}
	return mrg.Terminology.Scopetag
}

// termPath returns the note path of an entry.
func termPath(mrg *model.MRG, e model.Term) string {
	return "terms/" + sanitizeFilename(scopeOf(mrg, e)) + "/" + sanitizeFilename(e.Term) + ".md"
}

// tagBlock returns a YAML frontmatter block holding only sorted tags.
func tagBlock(tags []string) string {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)
	var b strings.Builder
	b.WriteString("---\ntags:\n")
	for _, t := range sorted {
		b.WriteString("  - " + t + "\n")
	}
	b.WriteString("---\n\n")
	return b.String()
}

// sanitizeFilename lower-cases s, replaces /, ., and whitespace with -,
// collapses consecutive - to one, and trims leading/trailing -.
func sanitizeFilename(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '.', ' ', '\t', '\\', ':':
			return '-'
		}
		return r
	}, s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// writeNote writes content to path, creating parent directories as needed.
func writeNote(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

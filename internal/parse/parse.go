// Package parse turns raw SAF and curated term documents into model values.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"mrgen/internal/frontmatter"
	"mrgen/internal/model"
)

// MalformedDocumentError reports a document that could not be parsed.
type MalformedDocumentError struct {
	Name string
	Err  error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document %s: %v", e.Name, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

func malformed(name string, err error) error {
	return &MalformedDocumentError{Name: name, Err: err}
}

// ParseSAF decodes a Scope Administration File. The document must declare
// scope.scopetag; everything else is validated by the generator.
func ParseSAF(raw []byte) (*model.SAF, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, malformed("saf", errors.New("empty document"))
	}
	var saf model.SAF
	if err := yaml.Unmarshal(raw, &saf); err != nil {
		return nil, malformed("saf", err)
	}
	if saf.Scope.Scopetag == "" {
		return nil, malformed("saf", errors.New("scope.scopetag is required"))
	}
	for i, ref := range saf.Scopes {
		if ref.Primary() == "" {
			return nil, malformed("saf", fmt.Errorf("scopes[%d] has no scopetags", i))
		}
	}
	return &saf, nil
}

// IsTermFile reports whether name has an extension ParseTerm understands.
func IsTermFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseTerm decodes one curated term file. Markdown files carry the term as
// YAML frontmatter and the body is ignored; .yaml/.yml files are plain YAML.
// When the document does not name its term, the file base name is used.
func ParseTerm(name string, raw []byte) (model.Term, error) {
	var t model.Term
	switch strings.ToLower(path.Ext(name)) {
	case ".md":
		if _, err := frontmatter.Decode(raw, &t); err != nil {
			return model.Term{}, malformed(name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &t); err != nil {
			return model.Term{}, malformed(name, err)
		}
	default:
		return model.Term{}, malformed(name, errors.New("unsupported file type"))
	}
	if t.Term == "" {
		base := path.Base(name)
		t.Term = strings.TrimSuffix(base, path.Ext(base))
	}
	return t, nil
}

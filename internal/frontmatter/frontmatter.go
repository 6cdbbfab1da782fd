// Package frontmatter reads and writes markdown documents that carry YAML
// frontmatter between --- delimiters, the format of curated term files and
// of the exported glossary pages.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter is returned when a document does not open with "---".
var ErrNoFrontmatter = errors.New("frontmatter: missing opening --- delimiter")

// Split separates a markdown document into its frontmatter (raw YAML bytes)
// and body. CRLF line endings are normalised first. The closing "---" line
// may be the last line of the document.
func Split(data []byte) (fm []byte, body []byte, err error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	const delim = "---\n"
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, ErrNoFrontmatter
	}
	rest := data[len(delim):]

	// Empty frontmatter block.
	if bytes.HasPrefix(rest, []byte("---")) {
		return nil, trimDelimLine(rest[3:]), nil
	}
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	return rest[:idx], trimDelimLine(rest[idx+4:]), nil
}

// trimDelimLine drops the newline that ends a closing delimiter line.
func trimDelimLine(tail []byte) []byte {
	if len(tail) > 0 && tail[0] == '\n' {
		return tail[1:]
	}
	return tail
}

// Decode splits data and unmarshals the frontmatter into v, returning the
// body.
func Decode(data []byte, v any) ([]byte, error) {
	fm, body, err := Split(data)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(fm, v); err != nil {
		return nil, fmt.Errorf("frontmatter: unmarshal: %w", err)
	}
	return body, nil
}

// Write marshals v as YAML frontmatter and appends body, returning the
// complete markdown document.
func Write(v any, body string) ([]byte, error) {
	fm, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

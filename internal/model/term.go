package model

// Term is one curated glossary entry. Curated files carry these fields as
// YAML frontmatter; Scopetag, Vsntag and Locator are stamped by the fetcher.
type Term struct {
	Term            string   `yaml:"term"`
	TermType        string   `yaml:"termType,omitempty"`
	Isa             string   `yaml:"isa,omitempty"`
	Scopetag        string   `yaml:"scopetag,omitempty"`
	Vsntag          string   `yaml:"vsntag,omitempty"`
	Locator         string   `yaml:"locator,omitempty"`
	GlossaryText    string   `yaml:"glossaryText,omitempty"`
	Synonyms        []string `yaml:"synonyms,omitempty"`
	Grouptags       []string `yaml:"grouptags,omitempty"`
	FormPhrases     []string `yaml:"formPhrases,omitempty"`
	Status          string   `yaml:"status,omitempty"`
	Created         string   `yaml:"created,omitempty"`
	Updated         string   `yaml:"updated,omitempty"`
	Contributors    string   `yaml:"contributors,omitempty"`
	Attribution     string   `yaml:"attribution,omitempty"`
	OriginalLicense string   `yaml:"originalLicense,omitempty"`
}


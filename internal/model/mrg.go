package model

// Terminology identifies the scope a glossary belongs to.
type Terminology struct {
	Scopetag string `yaml:"scopetag"`
	Scopedir string `yaml:"scopedir"`
}

// MRGVersion records which SAF version an MRG was generated for.
type MRGVersion struct {
	Vsntag     string   `yaml:"vsntag"`
	Altvsntags []string `yaml:"altvsntags,omitempty"`
}

// MRG is the Machine-Readable Glossary for one scope and version.
// Scopes mirrors the SAF's scopes list in declaration order.
type MRG struct {
	Terminology Terminology `yaml:"terminology"`
	Scopes      []ScopeRef  `yaml:"scopes,omitempty"`
	Versions    MRGVersion  `yaml:"versions"`
	Entries     []Term      `yaml:"entries"`
}

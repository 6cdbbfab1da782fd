// Package model defines the documents the generator reads and writes: the
// Scope Administration File (SAF), curated terms, and the Machine-Readable
// Glossary (MRG). Field order matches the YAML order of the documents.
package model

// SAF is the Scope Administration File of one terminology scope.
type SAF struct {
	Scope    Scope      `yaml:"scope"`
	Scopes   []ScopeRef `yaml:"scopes,omitempty"`
	Versions []Version  `yaml:"versions,omitempty"`
}

// Scope describes the scope that owns a SAF.
type Scope struct {
	Website     string   `yaml:"website,omitempty"`
	Scopetag    string   `yaml:"scopetag"`
	Scopedir    string   `yaml:"scopedir"`
	Curatedir   string   `yaml:"curatedir,omitempty"`
	Glossarydir string   `yaml:"glossarydir,omitempty"`
	Defaultvsn  string   `yaml:"defaultvsn,omitempty"`
	MRGFile     string   `yaml:"mrgfile,omitempty"`
	HRGFile     string   `yaml:"hrgfile,omitempty"`
	License     string   `yaml:"license,omitempty"`
	Statuses    []string `yaml:"statuses,omitempty"`
	Issues      string   `yaml:"issues,omitempty"`
}

// ScopeRef points at another scope. The first scopetag is the primary one;
// the rest are aliases used by this SAF.
type ScopeRef struct {
	Scopetags []string `yaml:"scopetags"`
	Scopedir  string   `yaml:"scopedir"`
}

// Primary returns the first scopetag, or "" when none is declared.
func (r ScopeRef) Primary() string {
	if len(r.Scopetags) == 0 {
		return ""
	}
	return r.Scopetags[0]
}

// Version is a named version of the scope's terminology.
type Version struct {
	Vsntag      string   `yaml:"vsntag"`
	Altvsntags  []string `yaml:"altvsntags,omitempty"`
	Termselcrit []string `yaml:"termselcrit,omitempty"`
	Status      string   `yaml:"status,omitempty"`
	From        string   `yaml:"from,omitempty"`
	To          string   `yaml:"to,omitempty"`
}

// Matches reports whether tag names this version, either as its vsntag or
// as one of its altvsntags.
func (v Version) Matches(tag string) bool {
	if tag == "" {
		return false
	}
	if v.Vsntag == tag {
		return true
	}
	for _, alt := range v.Altvsntags {
		if alt == tag {
			return true
		}
	}
	return false
}

// FindVersion returns the version named by tag and whether it exists.
func (s *SAF) FindVersion(tag string) (Version, bool) {
	for _, v := range s.Versions {
		if v.Matches(tag) {
			return v, true
		}
	}
	return Version{}, false
}

package filter

// criteria.go: Term selection criteria ("termselcrit") of a SAF version.
//
// Grammar, one criterion per string:
//
//	[-]*@<scopetag>[:<vsntag>]              every term of the scope
//	[-]<kind>[<a>,<b>]@<scopetag>[:<vsntag>] terms whose <kind> is a or b
//
// <kind> is one of tags, terms, types, status. A leading "-" turns the
// criterion into a remove filter. Without "@<scopetag>" the criterion
// applies to the scope that owns the SAF.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadCriterion is wrapped by every criterion parse failure.
var ErrBadCriterion = errors.New("bad term selection criterion")

// Criterion is one parsed term selection criterion.
type Criterion struct {
	Remove   bool
	Kind     string // "*" | "tags" | "terms" | "types" | "status"
	Items    []string
	Scopetag string
	Vsntag   string
}

// Filter returns the predicate the criterion selects with.
func (c Criterion) Filter() Filter {
	switch c.Kind {
	case "tags":
		return ByTags(c.Items...)
	case "terms":
		return ByTerms(c.Items...)
	case "types":
		return ByTypes(c.Items...)
	case "status":
		return ByStatus(c.Items...)
	default:
		return All()
	}
}

// Selection is the filter configuration of one scope.
type Selection struct {
	Add    []Filter
	Remove []Filter
	// Vsntag is the version of the scope the criteria asked for, if any.
	Vsntag string
}

// ParseCriterion parses one criterion. An omitted scopetag is replaced by
// defaultScope.
func ParseCriterion(s, defaultScope string) (Criterion, error) {
	raw := s
	s = strings.TrimSpace(s)
	var c Criterion
	if strings.HasPrefix(s, "-") {
		c.Remove = true
		s = strings.TrimSpace(s[1:])
	}

	sel, scope, hasScope := strings.Cut(s, "@")
	if hasScope {
		tag, vsn, _ := strings.Cut(scope, ":")
		c.Scopetag = strings.TrimSpace(tag)
		c.Vsntag = strings.TrimSpace(vsn)
		if c.Scopetag == "" {
			return Criterion{}, fmt.Errorf("%w %q: empty scopetag after @", ErrBadCriterion, raw)
		}
	} else {
		c.Scopetag = defaultScope
	}

	sel = strings.TrimSpace(sel)
	if sel == "*" {
		c.Kind = "*"
		return c, nil
	}

	open := strings.Index(sel, "[")
	if open <= 0 || !strings.HasSuffix(sel, "]") {
		return Criterion{}, fmt.Errorf("%w %q: expected * or <kind>[items]", ErrBadCriterion, raw)
	}
	c.Kind = strings.TrimSpace(sel[:open])
	switch c.Kind {
	case "tags", "terms", "types", "status":
	default:
		return Criterion{}, fmt.Errorf("%w %q: unknown kind %q", ErrBadCriterion, raw, c.Kind)
	}
	for _, it := range strings.Split(sel[open+1:len(sel)-1], ",") {
		if it = strings.TrimSpace(it); it != "" {
			c.Items = append(c.Items, it)
		}
	}
	if len(c.Items) == 0 {
		return Criterion{}, fmt.Errorf("%w %q: empty item list", ErrBadCriterion, raw)
	}
	return c, nil
}

// ParseCriteria groups criteria into one Selection per scopetag. Scopes no
// criterion mentions are absent from the result.
func ParseCriteria(criteria []string, defaultScope string) (map[string]*Selection, error) {
	out := make(map[string]*Selection)
	for _, s := range criteria {
		c, err := ParseCriterion(s, defaultScope)
		if err != nil {
			return nil, err
		}
		sel := out[c.Scopetag]
		if sel == nil {
			sel = &Selection{}
			out[c.Scopetag] = sel
		}
		if c.Remove {
			sel.Remove = append(sel.Remove, c.Filter())
		} else {
			sel.Add = append(sel.Add, c.Filter())
		}
		if c.Vsntag != "" {
			if sel.Vsntag != "" && sel.Vsntag != c.Vsntag {
				return nil, fmt.Errorf("%w %q: scope %s already selects version %s",
					ErrBadCriterion, s, c.Scopetag, sel.Vsntag)
			}
			sel.Vsntag = c.Vsntag
		}
	}
	return out, nil
}

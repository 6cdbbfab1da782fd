// Package filter holds the term predicates applied while fetching a scope's
// curated terms, and the parser for the term selection criteria a SAF
// version declares.
package filter

import "mrgen/internal/model"

// Filter reports whether a term matches. Filters are pure and may be shared
// between concurrent fetches.
type Filter func(model.Term) bool

// All matches every term.
func All() Filter {
	return func(model.Term) bool { return true }
}

// ByTags matches terms carrying at least one of the grouptags.
func ByTags(tags ...string) Filter {
	set := toSet(tags)
	return func(t model.Term) bool {
		for _, g := range t.Grouptags {
			if set[g] {
				return true
			}
		}
		return false
	}
}

// ByTerms matches terms by their term name.
func ByTerms(names ...string) Filter {
	set := toSet(names)
	return func(t model.Term) bool { return set[t.Term] }
}

// ByTypes matches terms by termType.
func ByTypes(types ...string) Filter {
	set := toSet(types)
	return func(t model.Term) bool { return set[t.TermType] }
}

// ByStatus matches terms by status.
func ByStatus(statuses ...string) Filter {
	set := toSet(statuses)
	return func(t model.Term) bool { return set[t.Status] }
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// Any reports whether at least one filter matches t.
func Any(filters []Filter, t model.Term) bool {
	for _, f := range filters {
		if f(t) {
			return true
		}
	}
	return false
}

// Apply drops every term matched by a remove filter, then keeps the terms
// matched by at least one add filter. An empty add list keeps nothing; pass
// []Filter{All()} to keep everything. Input order is preserved and terms is
// not modified.
func Apply(terms []model.Term, add, remove []Filter) []model.Term {
	out := make([]model.Term, 0, len(terms))
	for _, t := range terms {
		if Any(remove, t) {
			continue
		}
		if Any(add, t) {
			out = append(out, t)
		}
	}
	return out
}

// Package fetch reads raw SAF and curated term files from a scope's
// location: a local directory, or a directory inside a git repository that
// is shallow-cloned into the checkout cache.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Location is where a scope lives. Owner is empty for local scopes, in which
// case Root is a filesystem directory; otherwise Root is a slash-separated
// path inside the repository.
type Location struct {
	Host   string
	Owner  string
	Repo   string
	Branch string
	Root   string
}

// Remote reports whether the location is inside a git repository.
func (l Location) Remote() bool { return l.Owner != "" }

// OwnerRepo returns "owner/repo", or "" for local locations.
func (l Location) OwnerRepo() string {
	if !l.Remote() {
		return ""
	}
	return l.Owner + "/" + l.Repo
}

func (l Location) String() string {
	if !l.Remote() {
		return l.Root
	}
	s := l.Host + "/" + l.OwnerRepo()
	if l.Branch != "" {
		s += "@" + l.Branch
	}
	if l.Root != "" {
		s += ":" + l.Root
	}
	return s
}

// Join returns the location of the subdirectory dir.
func (l Location) Join(dir string) Location {
	if dir == "" {
		return l
	}
	if l.Remote() {
		l.Root = strings.TrimPrefix(path.Join(l.Root, dir), "/")
	} else {
		l.Root = filepath.Join(l.Root, filepath.FromSlash(dir))
	}
	return l
}

// ParseScopedir turns a SAF scopedir into a Location. Accepted forms:
//
//	https://<host>/<owner>/<repo>
//	https://<host>/<owner>/<repo>/tree/<branch>/<path...>
//	file:///abs/path, or any other string as a local path
func ParseScopedir(scopedir string) (Location, error) {
	switch {
	case strings.HasPrefix(scopedir, "file://"):
		return Location{Root: filepath.FromSlash(strings.TrimPrefix(scopedir, "file://"))}, nil
	case strings.HasPrefix(scopedir, "https://"), strings.HasPrefix(scopedir, "http://"):
	default:
		if scopedir == "" {
			return Location{}, fmt.Errorf("empty scopedir")
		}
		return Location{Root: scopedir}, nil
	}

	u, err := url.Parse(scopedir)
	if err != nil {
		return Location{}, fmt.Errorf("parse scopedir %q: %w", scopedir, err)
	}
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) < 2 {
		return Location{}, fmt.Errorf("scopedir %q: expected /<owner>/<repo>", scopedir)
	}
	loc := Location{
		Host:  u.Host,
		Owner: segs[0],
		Repo:  strings.TrimSuffix(segs[1], ".git"),
	}
	rest := segs[2:]
	if len(rest) == 0 {
		return loc, nil
	}
	if (rest[0] != "tree" && rest[0] != "blob") || len(rest) < 2 {
		return Location{}, fmt.Errorf("scopedir %q: expected /<owner>/<repo>/tree/<branch>/<path>", scopedir)
	}
	loc.Branch = rest[1]
	loc.Root = strings.Join(rest[2:], "/")
	return loc, nil
}

// Fetcher reads raw documents. Paths are relative to the location's Root.
// A path that does not exist yields an error wrapping fs.ErrNotExist.
type Fetcher interface {
	// ReadFile returns the contents of name.
	ReadFile(ctx context.Context, loc Location, name string) ([]byte, error)

	// ListDir returns the sorted names of the regular files in dir.
	ListDir(ctx context.Context, loc Location, dir string) ([]string, error)
}

// Router sends local locations to Local and remote ones to Remote.
type Router struct {
	Local  Fetcher
	Remote Fetcher
}

func (r *Router) pick(loc Location) (Fetcher, error) {
	if loc.Remote() {
		if r.Remote == nil {
			return nil, fmt.Errorf("no remote fetcher configured for %s", loc)
		}
		return r.Remote, nil
	}
	return r.Local, nil
}

func (r *Router) ReadFile(ctx context.Context, loc Location, name string) ([]byte, error) {
	f, err := r.pick(loc)
	if err != nil {
		return nil, err
	}
	return f.ReadFile(ctx, loc, name)
}

func (r *Router) ListDir(ctx context.Context, loc Location, dir string) ([]string, error) {
	f, err := r.pick(loc)
	if err != nil {
		return nil, err
	}
	return f.ListDir(ctx, loc, dir)
}

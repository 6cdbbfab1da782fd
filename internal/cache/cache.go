// Package cache manages the directory of git checkouts remote scopes are
// read from.
//
// Directory layout:
//
//	<dir>/<host>/<owner>/<repo>@<branch>/   # shallow clone of one branch
//	<dir>/<host>/<owner>/<repo>/            # default branch
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Cache is a checkout directory on disk.
type Cache struct {
	Dir string
}

// Key identifies one checkout.
type Key struct {
	Host   string
	Owner  string
	Repo   string
	Branch string
}

func (k Key) String() string {
	s := k.Host + "/" + k.Owner + "/" + k.Repo
	if k.Branch != "" {
		s += "@" + k.Branch
	}
	return s
}

// DefaultDir returns ~/.mrgen/repos.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".mrgen", "repos"), nil
}

// Open returns the cache rooted at dir, creating it if needed. An empty dir
// means DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{Dir: dir}, nil
}

// Path returns the checkout directory for k. It does not check existence.
func (c *Cache) Path(k Key) string {
	name := k.Repo
	if k.Branch != "" {
		name += "@" + strings.ReplaceAll(k.Branch, "/", "-")
	}
	return filepath.Join(c.Dir, k.Host, k.Owner, name)
}

// Entry is one checkout found in the cache.
type Entry struct {
	Key Key
	Dir string
}

// List returns every checkout in the cache, sorted by path.
func (c *Cache) List() ([]Entry, error) {
	var out []Entry
	hosts, err := readDirs(c.Dir)
	if err != nil {
		return nil, err
	}
	for _, host := range hosts {
		owners, err := readDirs(filepath.Join(c.Dir, host))
		if err != nil {
			return nil, err
		}
		for _, owner := range owners {
			repos, err := readDirs(filepath.Join(c.Dir, host, owner))
			if err != nil {
				return nil, err
			}
			for _, name := range repos {
				repo, branch, _ := strings.Cut(name, "@")
				out = append(out, Entry{
					Key: Key{Host: host, Owner: owner, Repo: repo, Branch: branch},
					Dir: filepath.Join(c.Dir, host, owner, name),
				})
			}
		}
	}
	return out, nil
}

// readDirs returns the sorted names of the subdirectories of dir. A missing
// dir yields no names.
func readDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes one checkout.
func (c *Cache) Remove(k Key) error {
	dir := c.Path(k)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("checkout %s not found in cache", k)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove checkout: %w", err)
	}
	return nil
}

// Clean deletes every checkout, keeping the cache directory itself.
func (c *Cache) Clean() error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.Dir, e.Name())); err != nil {
			return fmt.Errorf("clean cache: %w", err)
		}
	}
	return nil
}

package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Local reads from the filesystem. Root of the location is a directory.
type Local struct{}

func (Local) ReadFile(ctx context.Context, loc Location, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := filepath.Join(loc.Root, filepath.FromSlash(name))
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

func (Local) ListDir(ctx context.Context, loc Location, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := filepath.Join(loc.Root, filepath.FromSlash(dir))
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

package fetch

// git.go: Remote scopes are read from shallow clones kept in the checkout
// cache. Each checkout is cloned (or pulled) at most once per Git value, and
// concurrent requests for the same checkout share one git invocation.

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"mrgen/internal/cache"
)

// RunFunc runs git with args and returns its combined output.
type RunFunc func(ctx context.Context, args ...string) ([]byte, error)

// Git fetches from git repositories.
type Git struct {
	Cache  *cache.Cache
	Logger *zap.Logger
	// Run defaults to the git binary on PATH.
	Run RunFunc

	group  singleflight.Group
	mu     sync.Mutex
	synced map[string]bool
}

// NewGit returns a Git fetcher backed by c.
func NewGit(c *cache.Cache, logger *zap.Logger) *Git {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Git{Cache: c, Logger: logger}
}

func runGit(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "git", args...).CombinedOutput()
}

// CloneURL returns the https clone URL of loc.
func CloneURL(loc Location) string {
	host := loc.Host
	if host == "" {
		host = "github.com"
	}
	return "https://" + host + "/" + loc.OwnerRepo() + ".git"
}

func (g *Git) key(loc Location) cache.Key {
	return cache.Key{Host: loc.Host, Owner: loc.Owner, Repo: loc.Repo, Branch: loc.Branch}
}

// checkout makes sure the repository of loc is present and returns the
// local location of loc's Root inside it.
func (g *Git) checkout(ctx context.Context, loc Location) (Location, error) {
	dir := g.Cache.Path(g.key(loc))
	local := Location{Root: filepath.Join(dir, filepath.FromSlash(loc.Root))}

	g.mu.Lock()
	done := g.synced[dir]
	g.mu.Unlock()
	if done {
		return local, nil
	}

	_, err, _ := g.group.Do(dir, func() (any, error) {
		g.mu.Lock()
		done := g.synced[dir]
		g.mu.Unlock()
		if done {
			return nil, nil
		}
		if err := g.sync(ctx, loc, dir); err != nil {
			return nil, err
		}
		g.mu.Lock()
		if g.synced == nil {
			g.synced = make(map[string]bool)
		}
		g.synced[dir] = true
		g.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return Location{}, err
	}
	return local, nil
}

func (g *Git) sync(ctx context.Context, loc Location, dir string) error {
	run := g.Run
	if run == nil {
		run = runGit
	}
	log := g.logger().With(zap.String("repo", loc.OwnerRepo()), zap.String("branch", loc.Branch))

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		log.Debug("pulling checkout", zap.String("dir", dir))
		if out, err := run(ctx, "-C", dir, "pull", "--depth", "1", "--ff-only"); err != nil {
			return fmt.Errorf("git pull %s: %w\n%s", loc.OwnerRepo(), err, out)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create checkout parent: %w", err)
	}
	args := []string{"clone", "--depth", "1"}
	if loc.Branch != "" {
		args = append(args, "--branch", loc.Branch)
	}
	args = append(args, CloneURL(loc), dir)
	log.Debug("cloning repository", zap.String("dir", dir))
	if out, err := run(ctx, args...); err != nil {
		return fmt.Errorf("git clone %s: %w\n%s", loc.OwnerRepo(), err, out)
	}
	return nil
}

func (g *Git) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

func (g *Git) ReadFile(ctx context.Context, loc Location, name string) ([]byte, error) {
	local, err := g.checkout(ctx, loc)
	if err != nil {
		return nil, err
	}
	return Local{}.ReadFile(ctx, local, name)
}

func (g *Git) ListDir(ctx context.Context, loc Location, dir string) ([]string, error) {
	local, err := g.checkout(ctx, loc)
	if err != nil {
		return nil, err
	}
	return Local{}.ListDir(ctx, local, dir)
}

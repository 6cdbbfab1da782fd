package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"mrgen/internal/cache"
	"mrgen/internal/config"
	"mrgen/internal/export"
	"mrgen/internal/fetch"
	"mrgen/internal/generator"
	"mrgen/internal/model"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	verbose    bool
	configRoot string
	cacheDir   string

	settings *config.Settings
	logger   *zap.Logger

	// interactive reports whether the user can be prompted.
	interactive func() bool
	// prompt asks the user for a version tag.
	prompt func(versions []model.Version, def string) (string, error)
	// fetcher overrides the default local+git router.
	fetcher fetch.Fetcher
}

func newApp() *app {
	return &app{
		interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		prompt:      promptVersion,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "mrgen",
		Short: "Generate Machine-Readable Glossaries from Scope Administration Files",
		Long: `mrgen reads a scope's Scope Administration File (SAF), resolves every scope
it references, fetches their curated terms (from a local directory or a git
repository), filters them by the version's term selection criteria, and
writes the Machine-Readable Glossary (MRG).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.configRoot, "config-root", ".", "directory holding .mrgen/settings.yaml")
	root.PersistentFlags().StringVar(&a.cacheDir, "cache-dir", "", "git checkout cache (default ~/.mrgen/repos)")

	root.AddCommand(newGenerateCmd(a), newVersionsCmd(a), newCacheCmd(a))
	return root
}

// init loads settings and builds the logger.
func (a *app) init() error {
	s, err := config.Load(a.configRoot)
	if err != nil {
		return err
	}
	if a.cacheDir != "" {
		s.CacheDir = a.cacheDir
	}
	a.settings = s

	cfg := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if s.LogLevel != "" {
		if err := level.Set(s.LogLevel); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	a.logger, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newFetcher returns the configured fetcher: local directories are read in
// place, git repositories through the checkout cache.
func (a *app) newFetcher() (fetch.Fetcher, error) {
	if a.fetcher != nil {
		return a.fetcher, nil
	}
	c, err := cache.Open(a.settings.CacheDir)
	if err != nil {
		return nil, err
	}
	return &fetch.Router{
		Local:  fetch.Local{},
		Remote: fetch.NewGit(c, a.logger.Named("git")),
	}, nil
}

// ---------------------------------------------------------------------------
// generate
// ---------------------------------------------------------------------------

type generateFlags struct {
	saf      string
	vsntag   string
	out      string
	markdown string
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate <scopedir>",
		Short: "Generate the MRG of a scope",
		Long: `Generate the Machine-Readable Glossary of the scope at <scopedir>.

<scopedir> is a local directory or a repository URL such as
https://github.com/essif-lab/framework/tree/master/docs.

Without --vsntag the SAF's defaultvsn is used; when it has none and the
terminal is interactive, mrgen asks for one.

The MRG is written to --out, else the output directory from settings, else
the SAF's glossarydir (inside <scopedir> for local scopes).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), cmd.OutOrStdout(), args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.saf, "saf", "", "SAF file name (default from settings, saf.yaml)")
	cmd.Flags().StringVarP(&f.vsntag, "vsntag", "t", "", "version tag (vsntag or altvsntag) to generate")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "directory to write the MRG to")
	cmd.Flags().StringVar(&f.markdown, "markdown", "", "also write a markdown glossary to this directory")
	return cmd
}

func (a *app) runGenerate(ctx context.Context, w io.Writer, scopedir string, f generateFlags) error {
	fetcher, err := a.newFetcher()
	if err != nil {
		return err
	}
	safName := f.saf
	if safName == "" {
		safName = a.settings.SAF
	}
	opts := []generator.Option{generator.WithLogger(a.logger), generator.WithSettings(a.settings)}
	wrangler := generator.NewWrangler(fetcher, opts...)

	saf, err := wrangler.GetSAF(ctx, scopedir, safName)
	if err != nil {
		return err
	}
	vsntag, err := a.chooseVersion(saf, f.vsntag)
	if err != nil {
		return err
	}

	mrg, err := generator.New(wrangler, opts...).GenerateFromSAF(ctx, scopedir, saf, vsntag)
	if err != nil {
		return err
	}

	outDir, err := a.outputDir(scopedir, saf, f.out)
	if err != nil {
		return err
	}
	p, err := export.WriteMRG(mrg, outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s (%d entries)\n", p, len(mrg.Entries))

	if f.markdown != "" {
		bundle, err := export.GenerateGlossaryBundle(mrg)
		if err != nil {
			return err
		}
		if err := export.WriteGlossaryBundle(bundle, f.markdown); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote markdown glossary to %s\n", f.markdown)
	}
	return nil
}

// chooseVersion picks the version tag: the flag, else the SAF's defaultvsn,
// else an interactive prompt.
func (a *app) chooseVersion(saf *model.SAF, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if saf.Scope.Defaultvsn != "" {
		return saf.Scope.Defaultvsn, nil
	}
	if len(saf.Versions) == 0 {
		return "", fmt.Errorf("SAF of %s declares no versions", saf.Scope.Scopetag)
	}
	if !a.interactive() {
		return "", errors.New("no --vsntag given and SAF has no defaultvsn")
	}
	return a.prompt(saf.Versions, saf.Versions[0].Vsntag)
}

// outputDir decides where the MRG goes.
func (a *app) outputDir(scopedir string, saf *model.SAF, flag string) (string, error) {
	switch {
	case flag != "":
		return flag, nil
	case a.settings.Output != "":
		return a.settings.Output, nil
	}
	loc, err := fetch.ParseScopedir(scopedir)
	if err != nil {
		return "", err
	}
	if loc.Remote() {
		return filepath.FromSlash(saf.Scope.Glossarydir), nil
	}
	return filepath.Join(loc.Root, filepath.FromSlash(saf.Scope.Glossarydir)), nil
}

// ---------------------------------------------------------------------------
// versions
// ---------------------------------------------------------------------------

func newVersionsCmd(a *app) *cobra.Command {
	var safName string
	cmd := &cobra.Command{
		Use:   "versions <scopedir>",
		Short: "List the versions a scope's SAF declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, err := a.newFetcher()
			if err != nil {
				return err
			}
			if safName == "" {
				safName = a.settings.SAF
			}
			w := generator.NewWrangler(fetcher, generator.WithLogger(a.logger))
			saf, err := w.GetSAF(cmd.Context(), args[0], safName)
			if err != nil {
				return err
			}
			printVersions(cmd.OutOrStdout(), saf)
			return nil
		},
	}
	cmd.Flags().StringVar(&safName, "saf", "", "SAF file name (default from settings, saf.yaml)")
	return cmd
}

func printVersions(w io.Writer, saf *model.SAF) {
	if len(saf.Versions) == 0 {
		fmt.Fprintf(w, "scope %q declares no versions\n", saf.Scope.Scopetag)
		return
	}
	for _, v := range saf.Versions {
		line := v.Vsntag
		if len(v.Altvsntags) > 0 {
			line += " (" + strings.Join(v.Altvsntags, ", ") + ")"
		}
		if v.Status != "" {
			line += " [" + v.Status + "]"
		}
		if v.Vsntag == saf.Scope.Defaultvsn {
			line += " *default*"
		}
		fmt.Fprintln(w, line)
	}
}

// ---------------------------------------------------------------------------
// cache
// ---------------------------------------------------------------------------

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the git checkout cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cached repository checkouts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := cache.Open(a.settings.CacheDir)
				if err != nil {
					return err
				}
				entries, err := c.List()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintf(w, "no checkouts in %s\n", c.Dir)
					return nil
				}
				for _, e := range entries {
					fmt.Fprintf(w, "%-50s %s\n", e.Key, e.Dir)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove every cached checkout",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := cache.Open(a.settings.CacheDir)
				if err != nil {
					return err
				}
				if err := c.Clean(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", c.Dir)
				return nil
			},
		},
	)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mrgen: %v\n", err)
		stop()
		os.Exit(1)
	}
}

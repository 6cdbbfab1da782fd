package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"mrgen/internal/fetch"
	"mrgen/internal/model"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const sampleSAF = `scope:
  scopetag: demo
  scopedir: https://github.com/example/demo/tree/main/docs
  curatedir: terms
  glossarydir: glossaries
  defaultvsn: v1
versions:
  - vsntag: v1
    altvsntags: [ latest ]
  - vsntag: v2
    status: proposed
    termselcrit:
      - "tags[core]"
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func demoScope(t *testing.T) string {
	return writeTree(t, map[string]string{
		"saf.yaml":       sampleSAF,
		"terms/party.md": "---\nterm: party\ngrouptags: [core]\n---\n",
		"terms/actor.md": "---\nterm: actor\n---\n",
	})
}

// run executes mrgen with args against a non-interactive app.
func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	if a.interactive == nil {
		a.interactive = func() bool { return false }
	}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-root", t.TempDir(), "--cache-dir", t.TempDir()}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func readMRG(t *testing.T, path string) model.MRG {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var mrg model.MRG
	require.NoError(t, yaml.Unmarshal(data, &mrg))
	return mrg
}

// ---------------------------------------------------------------------------
// Help
// ---------------------------------------------------------------------------

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, &app{}, "--help")
	require.NoError(t, err)
	for _, name := range []string{"generate", "versions", "cache"} {
		assert.Contains(t, out, name)
	}
}

func TestGenerateRequiresScopedir(t *testing.T) {
	_, err := run(t, &app{}, "generate")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// generate
// ---------------------------------------------------------------------------

func TestGenerateDefaultVersion(t *testing.T) {
	scope := demoScope(t)

	out, err := run(t, &app{}, "generate", scope)
	require.NoError(t, err)

	p := filepath.Join(scope, "glossaries", "mrg.demo.v1.yaml")
	assert.Contains(t, out, p)
	mrg := readMRG(t, p)
	assert.Equal(t, "demo", mrg.Terminology.Scopetag)
	assert.Equal(t, "v1", mrg.Versions.Vsntag)
	require.Len(t, mrg.Entries, 2)
	assert.Equal(t, "actor", mrg.Entries[0].Term)
}

func TestGenerateExplicitVersionAndOutputs(t *testing.T) {
	scope := demoScope(t)
	outDir := filepath.Join(t.TempDir(), "out")
	mdDir := filepath.Join(t.TempDir(), "md")

	_, err := run(t, &app{}, "generate", scope, "--vsntag", "v2", "--out", outDir, "--markdown", mdDir)
	require.NoError(t, err)

	mrg := readMRG(t, filepath.Join(outDir, "mrg.demo.v2.yaml"))
	require.Len(t, mrg.Entries, 1)
	assert.Equal(t, "party", mrg.Entries[0].Term)

	_, err = os.Stat(filepath.Join(mdDir, "index.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(mdDir, "terms", "demo", "party.md"))
	assert.NoError(t, err)
}

// safCounter counts reads of saf.yaml.
type safCounter struct {
	fetch.Local
	reads atomic.Int32
}

func (c *safCounter) ReadFile(ctx context.Context, loc fetch.Location, name string) ([]byte, error) {
	if name == "saf.yaml" {
		c.reads.Add(1)
	}
	return c.Local.ReadFile(ctx, loc, name)
}

func TestGenerateReadsSAFOnce(t *testing.T) {
	counter := &safCounter{}
	_, err := run(t, &app{fetcher: counter}, "generate", demoScope(t), "--out", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int32(1), counter.reads.Load())
}

func TestGenerateUnknownVersion(t *testing.T) {
	_, err := run(t, &app{}, "generate", demoScope(t), "-t", "moo")
	require.Error(t, err)
	assert.Equal(t, "No such version: moo", err.Error())
}

func TestGenerateMissingSAF(t *testing.T) {
	_, err := run(t, &app{}, "generate", t.TempDir())
	assert.Error(t, err)
}

func TestGeneratePromptsWithoutDefault(t *testing.T) {
	scope := writeTree(t, map[string]string{
		"saf.yaml":       strings.Replace(sampleSAF, "  defaultvsn: v1\n", "", 1),
		"terms/party.md": "---\nterm: party\n---\n",
	})

	var asked []model.Version
	a := &app{
		interactive: func() bool { return true },
		prompt: func(vs []model.Version, def string) (string, error) {
			asked = vs
			assert.Equal(t, "v1", def)
			return "latest", nil
		},
	}
	out, err := run(t, a, "generate", scope, "--out", t.TempDir())
	require.NoError(t, err)
	assert.Len(t, asked, 2)
	assert.Contains(t, out, "mrg.demo.v1.yaml")

	a = &app{
		interactive: func() bool { return true },
		prompt: func([]model.Version, string) (string, error) {
			return "", errors.New("prompt cancelled")
		},
	}
	_, err = run(t, a, "generate", scope)
	assert.EqualError(t, err, "prompt cancelled")

	_, err = run(t, &app{}, "generate", scope)
	assert.Error(t, err, "non-interactive without default must fail")
}

// ---------------------------------------------------------------------------
// versions / cache
// ---------------------------------------------------------------------------

func TestVersionsCommand(t *testing.T) {
	out, err := run(t, &app{}, "versions", demoScope(t))
	require.NoError(t, err)
	assert.Contains(t, out, "v1 (latest) *default*")
	assert.Contains(t, out, "v2 [proposed]")
}

func TestCacheCommands(t *testing.T) {
	out, err := run(t, &app{}, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no checkouts")

	out, err = run(t, &app{}, "cache", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "cleaned")
}

// ---------------------------------------------------------------------------
// Version prompt model
// ---------------------------------------------------------------------------

func promptVersions() []model.Version {
	return []model.Version{
		{Vsntag: "v1", Altvsntags: []string{"latest"}},
		{Vsntag: "v2"},
	}
}

func typeText(m versionPrompt, s string) versionPrompt {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(versionPrompt)
	}
	return m
}

func press(m versionPrompt, k tea.KeyType) versionPrompt {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(versionPrompt)
}

func TestVersionPromptDefault(t *testing.T) {
	m := press(newVersionPrompt(promptVersions(), "v1"), tea.KeyEnter)
	assert.True(t, m.done)
	assert.Equal(t, "v1", m.chosen)
}

func TestVersionPromptAcceptsAltTag(t *testing.T) {
	m := typeText(newVersionPrompt(promptVersions(), "v1"), "latest")
	m = press(m, tea.KeyEnter)
	assert.True(t, m.done)
	assert.Equal(t, "latest", m.chosen)
}

func TestVersionPromptRejectsUnknown(t *testing.T) {
	m := typeText(newVersionPrompt(promptVersions(), "v1"), "moo")
	m = press(m, tea.KeyEnter)
	assert.False(t, m.done)
	assert.Contains(t, m.View(), "no such version: moo")

	m = typeText(m, "v2")
	m = press(m, tea.KeyEnter)
	assert.Equal(t, "v2", m.chosen)
}

func TestVersionPromptCancel(t *testing.T) {
	m := press(newVersionPrompt(promptVersions(), "v1"), tea.KeyEsc)
	assert.False(t, m.done)
}

func TestVersionPromptView(t *testing.T) {
	view := newVersionPrompt(promptVersions(), "v1").View()
	assert.Contains(t, view, "v1 (latest)")
	assert.Contains(t, view, "Version to generate:")
}

package main

// prompt.go: Interactive version selection for `mrgen generate`.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mrgen/internal/model"
)

// versionPrompt is a bubbletea model that asks for one version tag and
// accepts only tags the SAF declares.
type versionPrompt struct {
	versions []model.Version
	def      string
	input    textinput.Model
	errMsg   string
	done     bool
	chosen   string
}

func newVersionPrompt(versions []model.Version, def string) versionPrompt {
	ti := textinput.New()
	ti.Placeholder = def
	ti.CharLimit = 128
	ti.Focus()
	return versionPrompt{versions: versions, def: def, input: ti}
}

func (m versionPrompt) Init() tea.Cmd {
	return textinput.Blink
}

func (m versionPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			tag := strings.TrimSpace(m.input.Value())
			if tag == "" {
				tag = m.def
			}
			if !knownVersion(m.versions, tag) {
				m.errMsg = fmt.Sprintf("no such version: %s", tag)
				m.input.SetValue("")
				return m, nil
			}
			m.chosen = tag
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m versionPrompt) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString("Versions:\n")
	for _, v := range m.versions {
		b.WriteString("  " + v.Vsntag)
		if len(v.Altvsntags) > 0 {
			b.WriteString(" (" + strings.Join(v.Altvsntags, ", ") + ")")
		}
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(m.errMsg + "\n")
	}
	b.WriteString(fmt.Sprintf("Version to generate: %s\n", m.input.View()))
	return b.String()
}

func knownVersion(versions []model.Version, tag string) bool {
	for _, v := range versions {
		if v.Matches(tag) {
			return true
		}
	}
	return false
}

// promptVersion runs the TUI and returns the chosen version tag.
func promptVersion(versions []model.Version, def string) (string, error) {
	p := tea.NewProgram(newVersionPrompt(versions, def))
	result, err := p.Run()
	if err != nil {
		return "", err
	}
	final, ok := result.(versionPrompt)
	if !ok || !final.done {
		return "", fmt.Errorf("prompt cancelled")
	}
	return final.chosen, nil
}

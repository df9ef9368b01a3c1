package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/xresource/config"
	"github.com/wippyai/xresource/resource"
	"github.com/wippyai/xresource/wasmres"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	resolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	identityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// entry is one reference on screen. Entries are held by pointer so the
// reference inside never moves.
type entry struct {
	ref   resource.TypedRef[wasmres.Module]
	label string
}

type modelState int

const (
	stateBrowse modelState = iota
	stateNewRef
)

type interactiveModel struct {
	err      error
	h        *host
	status   string
	entries  []*entry
	input    textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(h *host) *interactiveModel {
	m := &interactiveModel{h: h, state: stateBrowse}
	for _, id := range h.ids {
		e := &entry{label: id.Instance.String()}
		e.ref.Assign(id.Instance)
		m.entries = append(m.entries, e)
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateNewRef {
		switch key.String() {
		case "enter":
			m.addNamed(strings.TrimSpace(m.input.Value()))
			m.state = stateBrowse
			return m, nil
		case "esc":
			m.state = stateBrowse
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	m.err = nil
	switch key.String() {
	case "ctrl+c", "q":
		m.releaseAll()
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.entries)-1 {
			m.selected++
		}

	case "g":
		if e := m.current(); e != nil {
			mod, ok, err := m.h.modules.Get(m.h.mgr, &e.ref)
			switch {
			case err != nil:
				m.err = err
			case !ok:
				m.status = "load failed: " + e.label
			default:
				e.label = mod.Name
				m.status = fmt.Sprintf("%s: %s", mod.Name, strings.Join(mod.Exports(), ", "))
			}
		}

	case "r":
		if e := m.current(); e != nil {
			m.err = m.h.release(&e.ref)
			m.status = "released " + e.label
		}

	case "c":
		if e := m.current(); e != nil {
			clone := &entry{label: e.label + "'"}
			if err := m.h.modules.Clone(m.h.mgr, &clone.ref, &e.ref); err != nil {
				m.err = err
				break
			}
			m.entries = append(m.entries, clone)
			m.status = "cloned " + e.label
		}

	case "f":
		n, err := m.h.sched.EndFrame()
		m.err = err
		m.status = fmt.Sprintf("frame %d: %d deferred releases", m.h.sched.Frame(), n)

	case "n":
		ti := textinput.New()
		ti.Placeholder = "module name"
		ti.Prompt = "name: "
		ti.Width = 40
		ti.Focus()
		m.input = ti
		m.state = stateNewRef
	}
	return m, nil
}

func (m *interactiveModel) current() *entry {
	if m.selected < 0 || m.selected >= len(m.entries) {
		return nil
	}
	return m.entries[m.selected]
}

func (m *interactiveModel) addNamed(name string) {
	if name == "" {
		return
	}
	e := &entry{label: name}
	e.ref.Assign(wasmres.Identity(name).Instance)
	m.entries = append(m.entries, e)
	m.selected = len(m.entries) - 1
	m.status = "new reference " + name
}

func (m *interactiveModel) releaseAll() {
	for _, e := range m.entries {
		_ = m.h.release(&e.ref)
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	s := m.h.mgr.Stats()
	b.WriteString(titleStyle.Render("Resource Inspector"))
	b.WriteString(fmt.Sprintf(" %s  count %d  pool %d/%d  pending %d  frame %d\n\n",
		m.h.root, m.h.mgr.Count(), s.Live, s.Capacity, m.h.sched.Pending(), m.h.sched.Frame()))

	if len(m.entries) == 0 {
		b.WriteString("No references. Press n to add one.\n")
	}
	for i, e := range m.entries {
		line := m.formatEntry(e)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateNewRef {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter add • esc back"))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • g get • r release • c clone • n new • f end frame • q quit"))
	return b.String()
}

func (m *interactiveModel) formatEntry(e *entry) string {
	full, err := m.h.modules.FullIdentity(m.h.mgr, &e.ref)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	if e.ref.Resolved() {
		return resolvedStyle.Render("● "+e.label) + " " +
			identityStyle.Render(full.String()) +
			fmt.Sprintf(" refs %d", m.h.mgr.RefCount(full))
	}
	return "○ " + e.label + " " + identityStyle.Render(full.String())
}

func runInteractive(cfg *config.Config) error {
	h, err := newHost(context.Background(), cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(newInteractiveModel(h), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		_ = h.close()
		return err
	}
	return h.close()
}

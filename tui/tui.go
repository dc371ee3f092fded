package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shu8h0-null/chainlab/core/blockchain"
)

const (
	modeBrowse = iota
	modeEdit
)

const (
	dataInput = iota
	nonceInput
)

// what enter does in edit mode
const (
	submitEdit   = iota // rewrite one block, leave the rest stale
	submitUpdate        // rewrite one block and relink the rest
)

const requestTimeout = time.Minute

// chainMsg carries the result of a round trip to the node.
type chainMsg struct {
	blocks   []blockchain.Block
	validity []blockchain.Validity
	status   string
	err      error
}

type model struct {
	client ChainClient

	mode     int
	submit   int
	selected int
	busy     bool

	blocks   []blockchain.Block
	validity []blockchain.Validity
	inputs   []textinput.Model
	focus    int

	status string
	err    error

	winWidth  int
	winHeight int
}

func newModel(client ChainClient) model {
	inputs := make([]textinput.Model, 2)

	inputs[dataInput] = textinput.New()
	inputs[dataInput].Prompt = "-> "
	inputs[dataInput].Placeholder = "Block data"
	inputs[dataInput].Width = 60

	inputs[nonceInput] = textinput.New()
	inputs[nonceInput].Prompt = "-> "
	inputs[nonceInput].Placeholder = "Nonce"
	inputs[nonceInput].Width = 20
	inputs[nonceInput].Validate = nonceValidator

	return model{
		client: client,
		mode:   modeBrowse,
		inputs: inputs,
	}
}

func (m model) Init() tea.Cmd {
	return m.run("", func(ctx context.Context) ([]blockchain.Block, error) {
		return m.client.Blocks(ctx)
	})
}

// run performs op and refreshes validity, so every screen shows which links are broken.
func (m model) run(status string, op func(ctx context.Context) ([]blockchain.Block, error)) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		blocks, err := op(ctx)
		if err != nil {
			return chainMsg{err: err}
		}
		validity, err := client.Validate(ctx)
		if err != nil {
			return chainMsg{err: err}
		}
		return chainMsg{blocks: blocks, validity: validity, status: status}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.winWidth = msg.Width
		m.winHeight = msg.Height
		return m, nil

	case chainMsg:
		m.busy = false
		m.err = msg.err
		if msg.err != nil {
			m.status = ""
			return m, nil
		}
		m.blocks = msg.blocks
		m.validity = msg.validity
		m.status = msg.status
		if m.selected >= len(m.blocks) {
			m.selected = max(len(m.blocks)-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, tea.Quit
	case "down", "j":
		if m.selected < len(m.blocks)-1 {
			m.selected++
		}
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	}

	if m.busy || len(m.blocks) == 0 {
		return m, nil
	}

	i := m.selected
	switch msg.String() {
	case "e", "u":
		m.submit = submitEdit
		if msg.String() == "u" {
			m.submit = submitUpdate
		}
		return m, m.startEdit()
	case "m":
		m.busy = true
		m.status = fmt.Sprintf("Mining block %d...", i)
		m.err = nil
		return m, m.run(fmt.Sprintf("Block %d mined", i), func(ctx context.Context) ([]blockchain.Block, error) {
			return m.client.MineBlock(ctx, i)
		})
	case "p":
		m.busy = true
		return m, m.run(fmt.Sprintf("Propagated hashes after block %d", i), func(ctx context.Context) ([]blockchain.Block, error) {
			return m.client.Propagate(ctx, i)
		})
	case "v", "r":
		m.busy = true
		return m, m.run("Chain validated", func(ctx context.Context) ([]blockchain.Block, error) {
			return m.client.Blocks(ctx)
		})
	}
	return m, nil
}

func (m *model) startEdit() tea.Cmd {
	b := m.blocks[m.selected]
	m.mode = modeEdit
	m.err = nil
	m.focus = dataInput
	m.inputs[dataInput].SetValue(b.Data)
	m.inputs[nonceInput].SetValue(fmt.Sprint(b.Nonce))
	m.inputs[nonceInput].Blur()
	return m.inputs[dataInput].Focus()
}

func (m model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.err = nil
		return m, nil
	case "tab", "shift+tab", "up", "down":
		switch msg.String() {
		case "tab":
			m.focus = (m.focus + 1) % len(m.inputs)
		case "shift+tab":
			m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
		case "down":
			if m.focus < len(m.inputs)-1 {
				m.focus++
			}
		case "up":
			if m.focus > 0 {
				m.focus--
			}
		}
		var cmd tea.Cmd
		for i := range m.inputs {
			if i == m.focus {
				cmd = m.inputs[i].Focus()
			} else {
				m.inputs[i].Blur()
			}
		}
		return m, cmd
	case "enter":
		return m.submitInputs()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) submitInputs() (tea.Model, tea.Cmd) {
	i := m.selected
	data := m.inputs[dataInput].Value()
	nonce, err := parseNonce(m.inputs[nonceInput].Value())
	if err != nil {
		m.err = err
		return m, nil
	}

	if m.submit == submitEdit && nonce == nil {
		m.err = errors.New("Invalid nonce: nonce cannot be empty when editing a single block!")
		return m, nil
	}

	m.mode = modeBrowse
	m.busy = true
	if m.submit == submitUpdate {
		return m, m.run(fmt.Sprintf("Block %d updated and chain relinked", i), func(ctx context.Context) ([]blockchain.Block, error) {
			return m.client.Update(ctx, i, data, nonce)
		})
	}
	n := *nonce
	return m, m.run(fmt.Sprintf("Block %d edited", i), func(ctx context.Context) ([]blockchain.Block, error) {
		return m.client.UpdateBlock(ctx, i, data, n)
	})
}

func (m model) isValid(i int) bool {
	if i >= len(m.validity) {
		return true
	}
	return m.validity[i].Valid
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString("~~ Chain explorer ~~\n\n")

	for i, b := range m.blocks {
		style := validBlockStyle
		verdict := validStyle.Render("valid")
		if !m.isValid(i) {
			style = invalidBlockStyle
			verdict = errorStyle.Render("invalid")
		}

		title := fmt.Sprintf("Block #%d  (%s)", b.Index, verdict)
		if i == m.selected {
			title = selectedStyle.Render(fmt.Sprintf(" Block #%d ", b.Index)) + fmt.Sprintf("  (%s)", verdict)
		} else {
			title = unSelectedStyle.Render(title)
		}
		body := fmt.Sprintf("%s\nnonce: %d\ndata:  %s\nprev:  %s\nhash:  %s",
			title, b.Nonce, b.Data,
			hashStyle.Render(b.PrevHash), hashStyle.Render(b.Hash))
		sb.WriteString(style.Render(body))
		sb.WriteString("\n")
	}

	if m.mode == modeEdit {
		action := "Edit block (later blocks keep stale links)"
		if m.submit == submitUpdate {
			action = "Update block and relink the rest (empty nonce keeps current)"
		}
		sb.WriteString(fmt.Sprintf("\n%s\n%s\n%s\n%s\n%s\n",
			inputStyle.Render(action),
			inputStyle.Render("Data"),
			m.inputs[dataInput].View(),
			inputStyle.Render("Nonce"),
			m.inputs[nonceInput].View(),
		))
	}

	if m.err != nil {
		sb.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		sb.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}

	if m.mode == modeEdit {
		sb.WriteString(helpStyle.Render("\ntab switch field • enter submit • esc cancel"))
	} else {
		sb.WriteString(helpStyle.Render("\n↑/↓ select • e edit • u update+relink • m mine • p propagate • v validate • esc quit"))
	}

	return Centered(sb.String(), m.winWidth, m.winHeight)
}

// Run starts the explorer against client and blocks until the user quits.
func Run(client ChainClient) error {
	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}

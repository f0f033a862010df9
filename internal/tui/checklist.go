// Package tui renders the shopping list as an interactive terminal checklist.
//
// Space ticks or unticks the selected item, c copies the ticked items as
// plaintext and q quits.
package tui

import (
	"context"
	"fmt"
	"strings"

	"lembas/internal/app"
	"lembas/internal/calendar"
	"lembas/internal/ingredient"
	"lembas/internal/shopping"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var sectionTitles = map[shopping.Category]string{
	shopping.CategoryIngredients: "To buy",
	shopping.CategoryCheckFor:    "Check the cupboard",
	shopping.CategoryScheduled:   "Scheduled",
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Copy   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "tick")),
	Copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// row addresses one item of the editable list.
type row struct {
	category shopping.Category
	index    int
}

type copiedMsg struct {
	text string
	err  error
}

// Model is the bubbletea model of the checklist. The list itself lives in the app.
type Model struct {
	ctx    context.Context
	app    *app.App
	save   bool
	copyFn func(string) error

	rows   []row
	cursor int
	help   help.Model
	status string

	// Exported holds the last copied text.
	Exported string
}

// Option configures a Model.
type Option func(*Model)

// WithSave keeps every copied list in the export history.
func WithSave(save bool) Option {
	return func(m *Model) { m.save = save }
}

// WithClipboard replaces the system clipboard.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copyFn = fn }
}

// New creates a checklist over the app's loaded shopping list.
func New(ctx context.Context, a *app.App, opts ...Option) Model {
	m := Model{
		ctx:    ctx,
		app:    a,
		copyFn: clipboard.WriteAll,
		help:   help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.rows = rowsOf(a.ShoppingList())
	return m
}

func rowsOf(e shopping.Editable) []row {
	var rows []row
	for _, c := range shopping.Categories {
		items, _ := e.Items(c)
		for i := range items {
			rows = append(rows, row{category: c, index: i})
		}
	}
	return rows
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(m.rows) == 0 {
				return m, nil
			}
			r := m.rows[m.cursor]
			if err := m.app.ToggleListItem(r.category, r.index); err != nil {
				m.status = err.Error()
			}
		case key.Matches(msg, keys.Copy):
			return m, m.copyList()
		}

	case copiedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Copy failed: %v", msg.err)
			return m, nil
		}
		m.Exported = msg.text
		m.status = "Copied to clipboard"

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) copyList() tea.Cmd {
	return func() tea.Msg {
		text, err := m.app.ExportList(m.ctx, m.save)
		if err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{text: text, err: m.copyFn(text)}
	}
}

func (m Model) View() string {
	list := m.app.ShoppingList()
	week := m.app.Range()

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("🛒 Shopping list, week of %s", calendar.FormatDate(week.From))))
	sb.WriteString("\n")

	if len(m.rows) == 0 {
		sb.WriteString(mutedStyle.Render("\nNothing to buy."))
		sb.WriteString("\n")
	}

	var current shopping.Category
	for i, r := range m.rows {
		if r.category != current {
			current = r.category
			sb.WriteString(sectionStyle.Render(sectionTitles[current]))
			sb.WriteString("\n")
		}
		items, _ := list.Items(r.category)
		if r.index >= len(items) {
			continue
		}
		sb.WriteString(renderItem(items[r.index], i == m.cursor))
		sb.WriteString("\n")
	}

	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(keys))
	return sb.String()
}

func renderItem(item shopping.Item, selected bool) string {
	check := "[ ]"
	if item.Ticked {
		check = "[x]"
	}
	qty := item.PurchaseQuantity.PurchaseQuantity
	if qty == 0 {
		qty = item.Ingredient.PurchaseQuantity
	}
	line := fmt.Sprintf("%s %s, %s", check, item.Ingredient.Name, ingredient.FormatAmount(item.Ingredient, qty))
	if selected {
		return cursorStyle.Render("> " + line)
	}
	return "  " + line
}

// Package tui は画像生成フォームの端末版です。
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/form"
)

const (
	fieldPrompt = iota
	fieldModel
	fieldToken
	fieldCount
)

const defaultWidth = 80

var fieldLabels = [fieldCount]string{"Prompt", "Modelo", "Token (opcional)"}

type readyMsg struct{}

type submitDoneMsg struct {
	err error
}

type tickMsg time.Time

// Model は bubbletea のモデルです。入力値は送信時にフォームへ渡され、結果はフォームの状態から描画します。
type Model struct {
	ctx  context.Context
	form *form.Form

	fields  [fieldCount]string
	focus   int
	width   int
	dots    int
	notices []domain.Notice
}

// New はマウント済みのフォームを操作するモデルを返します。
func New(ctx context.Context, f *form.Form) *Model {
	m := &Model{ctx: ctx, form: f, width: defaultWidth}
	m.fields[fieldModel] = f.State().Model
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitReadyCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case readyMsg:
		// 再描画のみ
	case submitDoneMsg:
		m.notices = m.form.TakeNotices()
	case tickMsg:
		if m.form.State().Loading {
			m.dots = (m.dots + 1) % 4
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % fieldCount
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + fieldCount - 1) % fieldCount
	case tea.KeyEnter:
		// ボタンが無効な間は送信しない
		if !m.form.State().CanSubmit() {
			return nil
		}
		return m.submitCmd()
	case tea.KeyBackspace:
		if r := []rune(m.fields[m.focus]); len(r) > 0 {
			m.fields[m.focus] = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.fields[m.focus] += " "
	case tea.KeyRunes:
		m.fields[m.focus] += string(msg.Runes)
	}
	return nil
}

func (m *Model) submitCmd() tea.Cmd {
	in := form.Input{
		Prompt: m.fields[fieldPrompt],
		Model:  m.fields[fieldModel],
		Token:  m.fields[fieldToken],
	}
	m.notices = nil
	return func() tea.Msg {
		return submitDoneMsg{err: m.form.Submit(m.ctx, in)}
	}
}

func (m *Model) waitReadyCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.form.WaitReady(m.ctx); err != nil {
			return nil
		}
		return readyMsg{}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) View() string {
	state := m.form.State()
	var b strings.Builder

	b.WriteString(EyebrowStyle().Render("PUTER4IMAGELLMS"))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		value := m.fields[i]
		if i == fieldToken {
			value = strings.Repeat("•", len([]rune(value)))
		}
		if i == m.focus {
			value += "▏"
		}
		b.WriteString(LabelStyle().Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(FieldStyle(i == m.focus, m.width).Render(value))
		b.WriteString("\n")
	}

	label := state.SubmitLabel()
	if state.Loading {
		label = strings.TrimSuffix(label, "...") + strings.Repeat(".", m.dots)
	}
	b.WriteString(ButtonStyle(state.CanSubmit()).Render(label))
	b.WriteString("\n\n")

	if state.ImageURL != "" {
		b.WriteString(LabelStyle().Render("Pré-visualização"))
		b.WriteString("\n")
		b.WriteString(ImageStyle().Render(displayURL(state.ImageURL)))
		b.WriteString("\n\n")
	}
	if state.Error != "" {
		b.WriteString(ErrorStyle().Render(state.Error))
		b.WriteString("\n\n")
	}
	for _, n := range m.notices {
		b.WriteString(NoticeStyle(n.Level).Render(n.Title))
		b.WriteString(" ")
		b.WriteString(HintStyle().Render(n.Description))
		b.WriteString("\n")
	}

	b.WriteString(HintStyle().Render("tab: próximo campo • enter: gerar • esc: sair"))
	return b.String()
}

// displayURL は data: URL を端末に出力しないよう短縮します。
func displayURL(u string) string {
	if strings.HasPrefix(u, "data:") {
		if i := strings.IndexByte(u, ','); i > 0 {
			return fmt.Sprintf("%s,… (%d bytes)", u[:i], len(u)-i-1)
		}
	}
	return u
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"puter4image-web/internal/domain"
)

func EyebrowStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("44")).
		Bold(true)
}

func FieldStyle(focused bool, width int) lipgloss.Style {
	color := lipgloss.Color("238")
	if focused {
		color = lipgloss.Color("44")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(width - 4)
}

func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Bold(true)
}

func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
}

func ButtonStyle(enabled bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Padding(0, 2).
		Bold(true)
	if enabled {
		return s.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("37"))
	}
	return s.Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236"))
}

func ImageStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("45")).
		Underline(true)
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("217")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("160")).
		Padding(0, 1)
}

// NoticeStyle は通知の重要度に応じた色を返します。
func NoticeStyle(level domain.NoticeLevel) lipgloss.Style {
	color := lipgloss.Color("245")
	switch level {
	case domain.NoticeSuccess:
		color = lipgloss.Color("42")
	case domain.NoticeError:
		color = lipgloss.Color("196")
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true)
}

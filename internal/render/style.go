package render

import (
	"strings"

	"cropadvisor/internal/types"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#198754"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)

	levelStyles = map[types.NotificationLevel]lipgloss.Style{
		types.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#0dcaf0")),
		types.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#198754")),
		types.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffc107")),
		types.LevelDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545")),
	}

	severityLevels = map[types.SeverityClass]types.NotificationLevel{
		types.ClassHealthy: types.LevelSuccess,
		types.ClassDisease: types.LevelWarning,
		types.ClassSevere:  types.LevelDanger,
	}
)

// Heading renders a section title.
func Heading(text string) string {
	return headingStyle.Render(text)
}

// Muted renders secondary text such as placeholders.
func Muted(text string) string {
	return mutedStyle.Render(text)
}

// Leveled colours text by notification level.
func Leveled(level types.NotificationLevel, text string) string {
	if s, ok := levelStyles[level]; ok {
		return s.Render(text)
	}
	return text
}

// Badge renders a bracketed label coloured by level, e.g. "[high]".
func Badge(level types.NotificationLevel, label string) string {
	return Leveled(level, "["+label+"]")
}

// SeverityIndicator renders the status dot for a severity class.
func SeverityIndicator(class types.SeverityClass) string {
	return Leveled(severityLevels[class], "●")
}

// Field renders "Label: value".
func Field(label, value string) string {
	return label + ": " + value
}

// Bullets renders items as an indented list.
func Bullets(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  • ")
		b.WriteString(item)
	}
	return b.String()
}

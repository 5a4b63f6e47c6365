package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Charter draws a bar chart of labelled values.
type Charter interface {
	Bar(title string, labels []string, values []float64) string
}

// TextChart draws horizontal bars with block characters.
type TextChart struct {
	Width int // bar width of the largest value; defaults to 30
}

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#198754"))

// Bar implements Charter. Bars are scaled against the largest value with a
// zero baseline.
func (c TextChart) Bar(title string, labels []string, values []float64) string {
	width := c.Width
	if width <= 0 {
		width = 30
	}

	maxVal := 0.0
	labelWidth := 0
	for i, v := range values {
		if v > maxVal {
			maxVal = v
		}
		if i < len(labels) && lipgloss.Width(labels[i]) > labelWidth {
			labelWidth = lipgloss.Width(labels[i])
		}
	}

	var b strings.Builder
	b.WriteString(Heading(title))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		n := 0
		if maxVal > 0 && v > 0 {
			n = int(v / maxVal * float64(width))
			if n == 0 {
				n = 1
			}
		}
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(label))
		fmt.Fprintf(&b, "\n%s%s │%s %s", label, pad, barStyle.Render(strings.Repeat("█", n)), FormatCurrency(v))
	}
	return b.String()
}

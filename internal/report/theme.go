package report

import "github.com/charmbracelet/lipgloss"

// Accent is the HN orange used for headings and top-level authors.
const Accent = lipgloss.Color("#FF6600")

// DepthColors cycles through these for authors at increasing reply depth.
var DepthColors = []lipgloss.Color{
	"#FF6600", // orange
	"#828282", // gray
	"#00BFFF", // deep sky blue
	"#32CD32", // lime green
	"#FFD700", // gold
	"#FF69B4", // hot pink
	"#9370DB", // medium purple
	"#20B2AA", // light sea green
}

// Theme holds the styles bound to one renderer, so output written to a
// pipe or buffer degrades to plain text.
type Theme struct {
	Rule    lipgloss.Style
	Heading lipgloss.Style
	Title   lipgloss.Style
	Meta    lipgloss.Style
	Marker  lipgloss.Style
	Error   lipgloss.Style
	Status  lipgloss.Style
	Authors []lipgloss.Style
}

func NewTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Rule:    r.NewStyle().Foreground(lipgloss.Color("#666666")),
		Heading: r.NewStyle().Foreground(Accent).Bold(true),
		Title:   r.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		Meta:    r.NewStyle().Foreground(lipgloss.Color("#828282")),
		Marker:  r.NewStyle().Foreground(lipgloss.Color("#666666")).Italic(true),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#FF4040")).Bold(true),
		Status: r.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1),
	}
	for _, c := range DepthColors {
		t.Authors = append(t.Authors, r.NewStyle().Foreground(c).Bold(true))
	}
	return t
}

// Author returns the style for an author at depth.
func (t Theme) Author(depth int) lipgloss.Style {
	return t.Authors[depth%len(t.Authors)]
}

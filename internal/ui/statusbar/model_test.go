package statusbar

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestViewShowsAllTabsWhenTheyFit(t *testing.T) {
	m := New([]string{"hackernews", "devto", "arxiv"})
	m.SetSize(80)
	m.SetActive(1)
	m.SetStatus("devto loaded in 12ms", false)

	v := m.View()
	assert.Contains(t, v, "hackernews")
	assert.Contains(t, v, "arxiv")
	assert.Contains(t, v, "devto loaded in 12ms")
	assert.Equal(t, 80, lipgloss.Width(v))
}

func TestViewCompactsWhenNarrow(t *testing.T) {
	m := New([]string{"hackernews", "devto", "arxiv", "github", "newsapi"})
	m.SetSize(30)
	m.SetActive(3)

	v := m.View()
	assert.Contains(t, v, "github 4/5")
	assert.NotContains(t, v, "hackernews")
	assert.LessOrEqual(t, lipgloss.Width(v), 30)
}

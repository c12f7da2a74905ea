package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/dialog"
	"github.com/fastygo/todoclient/internal/infrastructure/monitor"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	colorDanger = lipgloss.AdaptiveColor{Light: "#D2372D", Dark: "#F25D50"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#C98A00", Dark: "#F2B233"}
	colorOK     = lipgloss.AdaptiveColor{Light: "#2E8B57", Dark: "#5FD38D"}

	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleDone  = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	styleError = lipgloss.NewStyle().Foreground(colorDanger)

	styleDialog = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
	styleButton = lipgloss.NewStyle().Padding(0, 1).Bold(true)
)

func priorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	case domain.PriorityMedium:
		return lipgloss.NewStyle().Foreground(colorWarn)
	default:
		return styleMuted
	}
}

func renderTodo(t domain.Todo) string {
	box := "[ ]"
	title := t.Title
	if t.Completed {
		box = "[x]"
		title = styleDone.Render(title)
	}

	parts := []string{
		styleMuted.Render(fmt.Sprintf("%4d", t.ID)),
		box,
		title,
		priorityStyle(t.Priority).Render(string(t.Priority)),
	}
	if t.Category != nil {
		icon := domain.IconByName(t.Category.Icon)
		parts = append(parts, styleMuted.Render(icon.Glyph+" "+t.Category.Name))
	}
	if t.DueDate != nil && *t.DueDate != "" {
		parts = append(parts, styleMuted.Render("due "+*t.DueDate))
	}
	return strings.Join(parts, "  ")
}

func renderTodos(todos []domain.Todo) string {
	if len(todos) == 0 {
		return styleMuted.Render("No todos.")
	}
	lines := make([]string, 0, len(todos))
	for _, t := range todos {
		lines = append(lines, renderTodo(t))
	}
	return strings.Join(lines, "\n")
}

func renderCategories(categories []domain.Category) string {
	if len(categories) == 0 {
		return styleMuted.Render("No categories.")
	}
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		icon := domain.IconByName(c.Icon)
		lines = append(lines, fmt.Sprintf("%s  %s %s", styleMuted.Render(fmt.Sprintf("%4d", c.ID)), icon.Glyph, c.Name))
	}
	return strings.Join(lines, "\n")
}

func renderIcons() string {
	lines := make([]string, 0, len(domain.AvailableIcons))
	for _, icon := range domain.AvailableIcons {
		lines = append(lines, fmt.Sprintf("%s  %-8s %s", icon.Glyph, icon.Name, styleMuted.Render(icon.Label)))
	}
	return strings.Join(lines, "\n")
}

func renderStatus(s monitor.Status, baseURL string, authenticated bool, username string) string {
	mark := func(ok bool) string {
		if ok {
			return lipgloss.NewStyle().Foreground(colorOK).Render("ok")
		}
		return styleError.Render("down")
	}
	api := mark(s.API)
	if s.API {
		api += styleMuted.Render(fmt.Sprintf(" (HTTP %d, %s)", s.APIStatusCode, s.APILatency.Round(time.Millisecond)))
	}
	session := styleMuted.Render("logged out")
	if authenticated {
		session = "logged in as " + username
	}
	return strings.Join([]string{
		styleTitle.Render("todoctl status"),
		fmt.Sprintf("api      %s  %s", baseURL, api),
		fmt.Sprintf("storage  %s  %s", s.StorageBackend, mark(s.Storage)),
		fmt.Sprintf("session  %s", session),
	}, "\n")
}

// renderDialog draws the open dialog as a bordered box with its buttons.
func renderDialog(s dialog.State) string {
	body := s.Content
	if s.HTML {
		body = htmlToText(s.Content)
	}

	buttons := styleButton.Foreground(colorAccent).Render("[y] " + s.ConfirmText)
	if s.Mode == dialog.ModeConfirm && s.CancelText != "" {
		buttons += " " + styleButton.Foreground(colorMuted).Render("[n] "+s.CancelText)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styleTitle.Render(s.Title),
		"",
		body,
		"",
		buttons,
	)
	return styleDialog.Render(content)
}

// htmlToText flattens markup into plain text. Block elements start new lines.
func htmlToText(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "br":
				b.WriteString("\n")
			case "li":
				b.WriteString("\n- ")
			case "script", "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "ul", "ol", "h1", "h2", "h3":
				b.WriteString("\n")
			}
		}
	}
	walk(doc)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/campuslink/campusfeed/internal/feed"
	"github.com/campuslink/campusfeed/internal/lifecycle"
	"github.com/campuslink/campusfeed/internal/reaction"
)

const captionWidth = 64

// Lipgloss styles (k9s-inspired color scheme)
var (
	// Header style - bright cyan background, bold black text
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	// Section title style - bold bright cyan
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	// Author style - bright white, bold
	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	// Label style - dim cyan
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	// Dim style - for timestamps and secondary info
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// Cursor style - the focused list row marker
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// Shared-post inner box - the original snapshot inside a share
	originalStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("238")).
			PaddingLeft(1).
			MarginLeft(2)

	// Picker popover
	pickerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("51")).
			Padding(0, 1)

	// Container style - rounded border with dim gray
	containerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(1, 2)

	// Footer style - bright keys on dim background
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)
)

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return m.renderError()
	}

	switch m.mode {
	case modeDetail, modeCompose:
		return m.renderDetail()
	case modeCarousel:
		return m.renderCarousel()
	default:
		return m.renderList()
	}
}

func (m Model) renderError() string {
	header := headerStyle.Render(" CampusFeed ")

	var content strings.Builder
	content.WriteString("\n")
	content.WriteString(errStyle.Render("⚠ Cannot reach the feed gateway") + "\n\n")
	content.WriteString(dimStyle.Render("Error: ") + errStyle.Render(m.err.Error()) + "\n\n")
	content.WriteString(footer(key("R"), "retry", key("q"), "quit"))

	return containerStyle.Render(header + "\n" + content.String())
}

func (m Model) renderList() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())

	switch m.mode {
	case modeSearch:
		content.WriteString("\n" + labelStyle.Render("Search: ") + m.input.View() + "\n")
	case modeCaption:
		content.WriteString("\n" + labelStyle.Render("Caption: ") + m.input.View() + "\n")
	case modeShare:
		content.WriteString("\n" + labelStyle.Render("Share: ") + m.input.View() + "\n")
	}
	if m.mode != modeSearch && m.filter.Query != "" {
		content.WriteString("\n" + labelStyle.Render("Filter: ") +
			authorStyle.Render(m.filter.Query) +
			dimStyle.Render("  (esc clears)") + "\n")
	}

	if len(m.posts) == 0 && !m.loading {
		content.WriteString("\n" + dimStyle.Render("Nothing here.") + "\n")
	}

	now := time.Now()
	for i, p := range m.posts {
		content.WriteString("\n" + m.renderRow(p, i == m.cursor, now))
	}

	if m.mode == modeConfirmDelete {
		content.WriteString("\n" + warnStyle.Render("Delete this post permanently?") +
			"  " + key("y") + footerStyle.Render(" yes  ") + key("n") + footerStyle.Render(" no") + "\n")
	}

	content.WriteString("\n" + m.renderFooter())
	return containerStyle.Render(content.String())
}

func (m Model) renderHeader() string {
	title := headerStyle.Render(" CampusFeed · " + m.scope.String() + " ")

	who := dimStyle.Render("signed out")
	if m.userID != "" {
		who = labelStyle.Render(m.userName)
	}

	extra := dimStyle.Render(fmt.Sprintf("%d posts", len(m.posts)))
	if m.loading {
		extra = m.spin.View() + dimStyle.Render("loading")
	}

	line := fmt.Sprintf("%s   %s   %s", title, who, extra)
	if m.status != "" {
		style := errStyle
		if m.statusOK {
			style = okStyle
		}
		line += "   " + style.Render(m.status)
	}
	return line + "\n"
}

// renderRow renders one post card in the list.
func (m Model) renderRow(p feed.Post, focused bool, now time.Time) string {
	marker := "  "
	if focused {
		marker = cursorStyle.Render("▶ ")
	}

	head := marker + authorStyle.Render(p.Owner().Name) +
		dimStyle.Render("  ·  "+FormatAge(p.Posted(), now))

	var lines []string
	lines = append(lines, head)

	if sp, ok := p.(*feed.SharedPost); ok {
		if caption := strings.TrimSpace(sp.Caption); caption != "" {
			lines = append(lines, "    "+Truncate(caption, captionWidth))
		}
		inner := authorStyle.Render(sp.Original.Author.Name) + "\n" +
			Truncate(sp.Original.Caption, captionWidth)
		lines = append(lines, originalStyle.Render(inner))
	} else {
		lines = append(lines, "    "+Truncate(p.Text(), captionWidth))
	}

	if n := len(imagesOf(p)); n > 0 {
		lines = append(lines, "    "+dimStyle.Render(fmt.Sprintf("🖼 %d image(s)", n)))
	}

	lines = append(lines, "    "+m.renderActionRow(p))

	// The card shows only the most recent comment; the full thread lives in
	// the detail view.
	if last, n, ok := m.commentsC.Preview(p.Key()); ok {
		lines = append(lines, "    "+labelStyle.Render(last.UserName+": ")+Truncate(last.Message, captionWidth))
		if n > 1 {
			lines = append(lines, "    "+dimStyle.Render(fmt.Sprintf("view all %d comments", n)))
		}
	}

	if focused && m.pickerKey == p.Key() && m.pickers.State(p.Key()) == reaction.PickerHover {
		lines = append(lines, "    "+renderPicker())
	}
	if st := m.lifecycle.DeleteStateOf(p.Key()); st == lifecycle.DeleteInFlight {
		lines = append(lines, "    "+warnStyle.Render("deleting…"))
	}

	return strings.Join(lines, "\n") + "\n"
}

// renderActionRow renders the reaction button, summary and comment count.
func (m Model) renderActionRow(p feed.Post) string {
	btn := reaction.ButtonFor(p.Counts())
	b := lipgloss.NewStyle().Foreground(lipgloss.Color(btn.Color)).Bold(true).
		Render(btn.Emoji + " " + btn.Label)

	parts := []string{b}
	if s := FormatReactions(p.Counts()); s != "" {
		parts = append(parts, s)
	}
	if n, ok := m.commentsC.Count(p.Key()); ok && n > 0 {
		parts = append(parts, dimStyle.Render(FormatCommentCount(n)))
	}
	return strings.Join(parts, dimStyle.Render("  │  "))
}

// renderPicker renders the six-reaction popover with its digit bindings.
func renderPicker() string {
	var b strings.Builder
	for i, k := range feed.ReactionKinds {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(footerKeyStyle.Render(fmt.Sprintf("%d", i+1)))
		b.WriteString(" " + k.Emoji())
	}
	return pickerStyle.Render(b.String())
}

func (m Model) renderDetail() string {
	p, ok := m.store.Get(m.selected)
	if !ok {
		if p, ok = m.currentByKey(m.selected); !ok {
			return containerStyle.Render(dimStyle.Render("Post is gone.") + "\n\n" + footer(key("esc"), "back"))
		}
	}

	var content strings.Builder
	content.WriteString(m.renderHeader())

	content.WriteString("\n" + authorStyle.Render(p.Owner().Name) +
		dimStyle.Render("  ·  "+p.Posted().Format("Jan 2, 2006 3:04 PM")) + "\n")

	if sp, isShared := p.(*feed.SharedPost); isShared {
		if caption := strings.TrimSpace(sp.Caption); caption != "" {
			content.WriteString(caption + "\n")
		}
		inner := authorStyle.Render(sp.Original.Author.Name) +
			dimStyle.Render("  ·  "+FormatAge(sp.Original.CreatedAt, time.Now())) + "\n" +
			sp.Original.Caption
		content.WriteString(originalStyle.Render(inner) + "\n")
	} else {
		content.WriteString(p.Text() + "\n")
	}

	if n := len(imagesOf(p)); n > 0 {
		content.WriteString(dimStyle.Render(fmt.Sprintf("🖼 %d image(s), press o to view", n)) + "\n")
	}

	content.WriteString(m.renderActionRow(p) + "\n")
	if m.pickerKey == p.Key() && m.pickers.State(p.Key()) == reaction.PickerHover {
		content.WriteString(renderPicker() + "\n")
	}

	content.WriteString(sectionStyle.Render("┃ Comments") + "\n")
	content.WriteString(m.body.View() + "\n")

	if m.mode == modeCompose {
		content.WriteString(labelStyle.Render("Comment: ") + m.input.View() + "\n")
	}

	content.WriteString("\n" + footer(
		key("c"), "comment", key("r"), "react", key("o"), "images",
		key("R"), "reload", key("esc"), "back"))

	return containerStyle.Render(content.String())
}

// syncBody refreshes the comment viewport content for the selected post.
func (m *Model) syncBody() {
	if len(m.thread) == 0 {
		m.body.SetContent(dimStyle.Render("No comments yet."))
		return
	}
	now := time.Now()
	var b strings.Builder
	for i, c := range m.thread {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(authorStyle.Render(c.UserName) +
			dimStyle.Render("  "+FormatAge(c.CreatedAt, now)) + "\n")
		b.WriteString("  " + c.Message + "\n")
	}
	m.body.SetContent(b.String())
}

func (m Model) renderCarousel() string {
	var content strings.Builder
	content.WriteString(headerStyle.Render(" Images ") + "\n\n")

	url, ok := m.car.Current()
	if !ok {
		content.WriteString(dimStyle.Render("No images.") + "\n")
	} else {
		cur, total := m.car.Index()
		content.WriteString(labelStyle.Render(fmt.Sprintf("Image %d/%d", cur+1, total)) +
			dimStyle.Render(fmt.Sprintf("   zoom %.2fx", m.car.Zoom())) + "\n\n")
		content.WriteString(authorStyle.Render(url) + "\n")
	}

	content.WriteString("\n" + footer(
		key("←/→"), "prev/next", key("+/-"), "zoom", key("esc"), "close"))

	return containerStyle.Render(content.String())
}

func (m Model) renderFooter() string {
	pairs := []string{
		key("enter"), "open", key("/"), "search", key("r"), "react",
		key("v"), "view", key("R"), "refresh",
	}
	if m.scope == scopeActive {
		pairs = append(pairs, key("a"), "archive", key("t"), "trash", key("s"), "share")
	} else {
		pairs = append(pairs, key("u"), "restore", key("d"), "delete")
	}
	pairs = append(pairs, key("q"), "quit")
	return footer(pairs...)
}

func key(k string) string { return footerKeyStyle.Render("[" + k + "]") }

// footer joins alternating key/label pairs into the shortcut line.
func footer(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(pairs[i])
		b.WriteString(footerStyle.Render(" " + pairs[i+1]))
	}
	return b.String()
}

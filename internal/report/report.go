// Package report renders the console output of the ALETHEIA commands.
//
// Headings are styled with lipgloss when the writer is a terminal and come
// out as plain text otherwise, so redirected output matches the fixed
// report text exactly.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette shared with the other ALETHEIA terminal tools.
var (
	accent  = lipgloss.Color("#8BC34A")
	primary = lipgloss.Color("#5C9FD6")
	muted   = lipgloss.Color("#8A94A6")
)

var rule = strings.Repeat("=", 50)

// printer writes styled lines and remembers the first write error.
type printer struct {
	w   io.Writer
	err error

	title   lipgloss.Style
	heading lipgloss.Style
	success lipgloss.Style
	note    lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(primary),
		heading: r.NewStyle().Bold(true),
		success: r.NewStyle().Bold(true).Foreground(accent),
		note:    r.NewStyle().Foreground(muted),
	}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) {
	p.printf("%s\n", s)
}

func (p *printer) blank() {
	p.printf("\n")
}

// styled prints s rendered with style on its own line.
func (p *printer) styled(style lipgloss.Style, s string) {
	p.line(style.Render(s))
}

func (p *printer) bullets(items ...string) {
	for _, item := range items {
		p.printf("   • %s\n", item)
	}
}

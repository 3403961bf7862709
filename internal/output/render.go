package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// Renderer handles styled terminal output.
type Renderer struct {
	w io.Writer

	Summary lipgloss.Style
	Data    lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style
}

// NewRenderer creates a renderer writing styled output to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{
		w:       w,
		Summary: lipgloss.NewStyle().Bold(true),
		Data:    lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Hint:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

// RenderResponse writes a success envelope for humans: summary line first,
// then pretty-printed data.
func (r *Renderer) RenderResponse(resp *Response) {
	if resp.Summary != "" {
		fmt.Fprintln(r.w, r.Summary.Render(resp.Summary))
	}
	if resp.Data == nil {
		return
	}
	data, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		fmt.Fprintf(r.w, "%v\n", resp.Data)
		return
	}
	fmt.Fprintln(r.w, r.Data.Render(string(data)))
}

// RenderError writes an error with its hint, if any.
func (r *Renderer) RenderError(e *Error) {
	fmt.Fprintln(r.w, r.Error.Render("Error: "+e.Message))
	if e.Hint != "" {
		fmt.Fprintln(r.w, r.Hint.Render(e.Hint))
	}
}

// isTTY reports whether w is an interactive terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(f.Fd())
}

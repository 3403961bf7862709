package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Response is the success envelope for JSON output.
type Response struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ErrorResponse is the error envelope for JSON output.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// Format specifies the output format.
type Format int

const (
	FormatAuto Format = iota // Auto-detect: TTY → styled, non-TTY → JSON
	FormatJSON
	FormatStyled
	FormatQuiet // Data only, no envelope
)

// Options controls output behavior.
type Options struct {
	Format Format
	Writer io.Writer
}

// Writer handles all output formatting.
type Writer struct {
	opts Options
}

// New creates a new output writer.
func New(opts Options) *Writer {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return &Writer{opts: opts}
}

// ResponseOption mutates a success envelope before rendering.
type ResponseOption func(*Response)

// WithSummary attaches a one-line human summary to the response.
func WithSummary(format string, args ...any) ResponseOption {
	return func(r *Response) {
		r.Summary = fmt.Sprintf(format, args...)
	}
}

// OK outputs a success response.
func (w *Writer) OK(data any, opts ...ResponseOption) error {
	resp := &Response{OK: true, Data: data}
	for _, opt := range opts {
		opt(resp)
	}
	return w.writeOK(resp)
}

// Err outputs an error response.
func (w *Writer) Err(err error) error {
	e := AsError(err)
	resp := &ErrorResponse{
		OK:    false,
		Error: e.Message,
		Code:  e.Code,
		Hint:  e.Hint,
	}

	switch w.resolveFormat() {
	case FormatStyled:
		r := NewRenderer(w.opts.Writer)
		r.RenderError(e)
		return nil
	default:
		return w.writeJSON(resp)
	}
}

func (w *Writer) writeOK(resp *Response) error {
	switch w.resolveFormat() {
	case FormatQuiet:
		return w.writeJSON(resp.Data)
	case FormatStyled:
		r := NewRenderer(w.opts.Writer)
		r.RenderResponse(resp)
		return nil
	default:
		return w.writeJSON(resp)
	}
}

func (w *Writer) resolveFormat() Format {
	if w.opts.Format == FormatAuto {
		if isTTY(w.opts.Writer) {
			return FormatStyled
		}
		return FormatJSON
	}
	return w.opts.Format
}

func (w *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(w.opts.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

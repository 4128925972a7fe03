package term

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

const (
	defaultRefresh = 500 * time.Millisecond
	fallbackWidth  = 80
)

// StatusFunc supplies the header line drawn above each frame.
type StatusFunc func() string

// Renderer periodically repaints a Surface to a writer.
type Renderer struct {
	Surface *Surface
	Status  StatusFunc
	Writer  io.Writer
	Refresh time.Duration
	// Width overrides terminal size detection when positive.
	Width int
}

// NewRenderer returns a renderer writing to w with the default refresh rate.
func NewRenderer(s *Surface, w io.Writer) *Renderer {
	return &Renderer{Surface: s, Writer: w, Refresh: defaultRefresh}
}

// Run repaints until the context is cancelled.
func (r *Renderer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.Writer == nil {
		r.Writer = os.Stdout
	}
	if r.Surface == nil {
		return errors.New("term renderer requires a surface")
	}
	refresh := r.Refresh
	if refresh <= 0 {
		refresh = defaultRefresh
	}

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	fmt.Fprint(r.Writer, "\033[?25l")
	defer fmt.Fprint(r.Writer, "\033[?25h")

	r.paint(true)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.paint(true)
		}
	}
}

// Once writes a single frame without clearing the screen.
func (r *Renderer) Once() {
	if r.Writer == nil {
		r.Writer = os.Stdout
	}
	r.paint(false)
}

func (r *Renderer) paint(clear bool) {
	var buf bytes.Buffer
	if clear {
		buf.WriteString("\033[H\033[2J")
	}
	if r.Status != nil {
		buf.WriteString(r.Status())
		buf.WriteString("\n\n")
	}
	buf.WriteString(r.Surface.Frame(r.width()))
	buf.WriteByte('\n')
	fmt.Fprint(r.Writer, buf.String())
}

func (r *Renderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	f, ok := r.Writer.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallbackWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallbackWidth
	}
	return w
}

package output

import (
	"fmt"
	"io"

	"github.com/maximumstock/benchlinks/internal/annotate"
)

// TextWriter prints one "<Label> Benchmark: <url>" line per branch.
type TextWriter struct{}

func (t *TextWriter) WriteLinks(w io.Writer, reference, branch annotate.Link) error {
	ew := &errWriter{w: w}
	ew.printf("%s Benchmark: %s\n", reference.Label, reference.URL)
	ew.printf("%s Benchmark: %s\n", branch.Label, branch.URL)
	return ew.err
}

// WriteResult is a no-op: the links are already on stdout and status goes to the log.
func (t *TextWriter) WriteResult(w io.Writer, res *annotate.Result) error {
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

package output

import (
	"fmt"
	"io"

	"github.com/maximumstock/benchlinks/internal/annotate"
)

// Writer renders annotation results.
//
// WriteLinks is called as soon as both links are known, before the pull
// request is touched. WriteResult is called once the run has finished.
type Writer interface {
	WriteLinks(w io.Writer, reference, branch annotate.Link) error
	WriteResult(w io.Writer, res *annotate.Result) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

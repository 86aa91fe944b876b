package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/maximumstock/benchlinks/internal/annotate"
)

// JSONWriter outputs the full result as JSON once the run completes.
type JSONWriter struct{}

func (j *JSONWriter) WriteLinks(w io.Writer, reference, branch annotate.Link) error {
	return nil
}

func (j *JSONWriter) WriteResult(w io.Writer, res *annotate.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

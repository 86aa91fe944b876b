// Package output formats annotation results for display or machine consumption.
//
// Two formats are supported:
//   - text: the two "<Label> Benchmark: <url>" lines (default)
//   - json: the full [annotate.Result], written after the comment is posted
//
// Use [GetWriter] to obtain a [Writer] for a given format string.
package output

// Package redact removes credentials from text before it is logged.
//
// Detection uses regex heuristics for the token shapes this tool can meet:
// GitHub personal, OAuth, app and fine-grained tokens, bearer and token
// authorization headers, and token assignments in URLs or config text.
package redact

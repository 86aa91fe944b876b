// Package config loads and merges benchlinks configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (BENCHLINKS_OWNER, BENCHLINKS_REPO,
//     BENCHLINKS_REFERENCE_BRANCH, BENCHLINKS_HOST, etc.)
//  3. Config file ($XDG_CONFIG_HOME/benchlinks/config.toml)
//  4. Built-in defaults (maximumstock/dns-thingy, reference branch master)
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single key.
package config

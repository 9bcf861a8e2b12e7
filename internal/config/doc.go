// Package config defines the shellpane configuration schema, its loaders,
// and live reload.
//
// Configuration is a single flat document with sections for the console
// (prompt, history, width), presentation (margins, theme), the command
// host, logging, and the SSH frontend. Files may be TOML or YAML; the
// loader dispatches on the file extension and falls back to defaults when
// no file exists. A Watcher reloads the file on change, debounced, and
// hands the fresh Config to a handler.
package config

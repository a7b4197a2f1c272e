// Package config loads agit's repository-local defaults from
// .agit/config.yaml: author, default branch, log level, and the
// auto-GC interval, the same YAML-manifest style warren's "apply"
// command reads service definitions in.
package config

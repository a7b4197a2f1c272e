// Package log provides agit's structured logging on top of zerolog:
// a global logger configured once via Init, and small helpers for
// attaching component, run, and branch context to child loggers.
package log

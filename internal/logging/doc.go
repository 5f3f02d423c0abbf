// Package logging provides opt-in file-based structured logging with
// rotation for the retrieval engine. When debug logging is enabled,
// comprehensive JSON logs are written to ~/.knowledgeforge/logs/ for
// troubleshooting.
//
// By default, logging is minimal and goes to stderr only.
package logging

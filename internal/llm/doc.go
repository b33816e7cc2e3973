// Package llm implements the statement extraction service. A provider
// client sends one prompt, optionally with the raw statement attached, and
// the Extractor turns the model's reply into expense rows under a
// sequential retry policy.
package llm

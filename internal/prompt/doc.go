// Package prompt implements session presenters: an interactive terminal
// multi-select and a non-interactive presenter driven by an answers file.
package prompt

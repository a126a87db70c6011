// Package editor provides a Bubble Tea text editor component backed by the
// buffer package.
//
// The package handles input, viewport behavior, cell-aware rendering, markdown
// formatting commands, and the host hooks the autocomplete layer plugs into:
// change events, ghost suggestions, and ghost acceptance.
package editor

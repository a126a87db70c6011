// Package clipboard connects the editor to the system clipboard.
package clipboard

import "github.com/atotto/clipboard"

// System implements editor.Clipboard with the OS clipboard. Reads and
// writes fail on systems without a clipboard utility; the editor ignores
// those errors.
type System struct{}

func (System) ReadText() (string, error) { return clipboard.ReadAll() }

func (System) WriteText(s string) error { return clipboard.WriteAll(s) }

// Available reports whether a clipboard utility was found.
func Available() bool { return !clipboard.Unsupported }

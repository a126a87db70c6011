package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/inkwell/internal/clipboard"
	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/internal/logger"
	"github.com/iw2rmb/inkwell/internal/ui"
)

func runTUI(app *App) error {
	path := app.cfg.Log.File
	if path == "" {
		p, err := config.LogPath()
		if err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
		path = p
	}
	f, err := logger.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	l := logger.New("inkwell", f, app.cfg.LogLevel())
	l.Info("starting", "config", app.cfgFrom)

	client, closeClient := editorSuggestClient(app.cfg, l)
	defer closeClient()

	opts := ui.Options{
		Auth:   newGate(app.cfg, l),
		Client: client,
		Config: app.cfg,
		Logger: l,
	}
	if clipboard.Available() {
		opts.Clipboard = clipboard.System{}
	} else {
		l.Warn("no clipboard utility found, copy and paste are disabled")
	}

	model := ui.New(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if m, ok := final.(ui.App); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	l.Info("bye")
	return nil
}

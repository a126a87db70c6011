package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/inkwell/identity"
	"github.com/iw2rmb/inkwell/suggest"
)

func newSuggestCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <word>",
		Short: "Query the suggestion service once and print the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if limit <= 0 {
				limit = app.cfg.Autocomplete.Limit
			}
			client, closeClient, err := newSuggestClient(app.cfg, app.log)
			if err != nil {
				return err
			}
			defer closeClient()

			req := suggest.Request{Query: args[0], Limit: limit}
			if app.cfg.Autocomplete.RequireAuthToken {
				tok, err := sessionToken(ctx, app)
				if err != nil {
					return err
				}
				req.Token = tok
			}

			ctx, cancel := context.WithTimeout(ctx, app.cfg.SuggestTimeout())
			defer cancel()
			words, err := client.Suggest(ctx, req)
			if err != nil {
				return fmt.Errorf("suggest %q: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			for _, w := range words {
				fmt.Fprintln(out, w)
			}
			app.log.Debug("suggestions", "query", args[0], "count", len(words))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of suggestions (default from config)")
	return cmd
}

// sessionToken restores the stored session and returns a fresh ID token.
func sessionToken(ctx context.Context, app *App) (string, error) {
	gate := newGate(app.cfg, app.log)
	if err := gate.Restore(ctx); err != nil {
		return "", fmt.Errorf("restore session: %w", err)
	}
	tok, err := gate.Token(ctx)
	if errors.Is(err, identity.ErrNotSignedIn) {
		return "", errors.New("not signed in: run inkwell to sign in first")
	}
	return tok, err
}

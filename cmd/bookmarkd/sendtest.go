package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bookmarkd/internal/notify"
	"bookmarkd/pkg/types"
)

func newSendTestCmd(o *options) *cobra.Command {
	var ev notify.BookmarkEvent
	cmd := &cobra.Command{
		Use:     "send-test",
		Short:   "Send one notification synchronously and print the per-recipient results",
		Example: "  bookmarkd send-test -c config.yaml --category work --url https://example.com --title Example",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(o)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			rc, warns, err := notify.Load(cfg.Messaging)
			logWarnings(log, warns)
			if err != nil {
				return err
			}
			disp := notify.NewDispatcher(rc, notify.WithLogger(log))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			results := disp.Dispatch(ctx, ev)

			out := make([]types.DispatchResult, 0, len(results))
			failed := 0
			for _, r := range results {
				if !r.OK() {
					failed++
				}
				out = append(out, types.DispatchResult{
					Client:    r.Client,
					Recipient: r.Recipient,
					Class:     string(r.Class),
					Status:    string(r.Status),
					ErrKind:   string(r.ErrKind),
					Error:     r.Error,
				})
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d notifications failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ev.Category, "category", "", "Bookmark category used for routing")
	cmd.Flags().StringVar(&ev.URL, "url", "https://example.com/", "Bookmark URL")
	cmd.Flags().StringVar(&ev.Title, "title", "bookmarkd test", "Bookmark title")
	return cmd
}

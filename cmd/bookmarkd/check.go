package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"bookmarkd/internal/notify"
)

func newCheckConfigCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "check-config",
		Short:   "Validate the config file and print messaging warnings",
		Example: "  bookmarkd check-config -c ~/.config/bookmarkd/config.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(o)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rc, warns, err := notify.Load(cfg.Messaging)
			for _, w := range warns {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "storage: %s\n", cfg.Storage.Driver)
			if !rc.Enabled() {
				fmt.Fprintln(out, "messaging: disabled")
				return nil
			}
			for _, c := range rc.Clients() {
				state := "enabled"
				if !c.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "client %s (%s, %s): %s\n", c.Name, c.Type, state, c.APIURL)
			}
			routes := rc.Routes()
			cats := make([]string, 0, len(routes))
			for cat := range routes {
				cats = append(cats, cat)
			}
			sort.Strings(cats)
			for _, cat := range cats {
				fmt.Fprintf(out, "route %s -> %v\n", cat, routes[cat])
			}
			fmt.Fprintf(out, "ok: %d clients, %d routes, %d warnings\n", len(rc.Clients()), len(routes), len(warns))
			return nil
		},
	}
}

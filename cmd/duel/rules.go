package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/duel/internal/game/dice"
)

func newRulesCmd(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the configured rule data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate rule tables, conditions, situations and scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.rules()
			if err != nil {
				return err
			}
			conds, err := a.conditions()
			if err != nil {
				return err
			}
			if _, err := a.situations(); err != nil {
				return err
			}
			hooks, err := a.hooks(dice.NewLoggedRoller(dice.NewCryptoSource(), a.logger))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tables:      %d\n", len(r.Tables))
			fmt.Fprintf(out, "layouts:     %d\n", len(r.Layouts))
			fmt.Fprintf(out, "injuries:    %d zone categories\n", len(r.Injury))
			fmt.Fprintf(out, "conditions:  %d\n", len(conds.All()))
			fmt.Fprintf(out, "reroll cap:  %d\n", r.RerollLimit)
			if hooks != nil {
				fmt.Fprintf(out, "house rules: %s\n", a.cfg.Rules.ScriptsDir)
			}
			fmt.Fprintln(out, "rules ok")
			return nil
		},
	})
	return cmd
}

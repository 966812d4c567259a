package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/duel/internal/game/effect"
)

func newHistoryCmd(global *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history ID",
		Short: "Show a combatant's effects and its most recent exchanges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1, got %d", limit)
			}
			a, err := newApp(global)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			c, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			records, err := st.History(cmd.Context(), c.ID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s) life %d/%d\n", c.Name, c.ID, c.Life, c.MaxLife)
			if c.Effects.Len() > 0 {
				block, err := effect.Export(&c.Effects)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "effects:\n%s", block)
			}
			for _, rec := range records {
				fmt.Fprintf(out, "\n%s %s: %s vs %s, %s\n",
					rec.At.Format(time.RFC3339), rec.ID, rec.AttackerID, rec.DefenderID, rec.Outcome)
				for _, line := range rec.Lines {
					fmt.Fprintf(out, "  %s\n", line)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of exchanges to show")
	return cmd
}

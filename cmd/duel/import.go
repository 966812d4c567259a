package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/duel/internal/importer"
)

func newImportCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Import text stat blocks into the configured store",
		Long: `Import parses a stat-block file, or every *.txt file in a directory,
and adds the combatants to the configured store in one write. IDs are derived
from the combatant names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			cs, err := importer.New(importer.NewSheetSource(), st, a.logger).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, c := range cs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "duel",
		Short: "Resolve tabletop melee and ranged exchanges",
		Long: `duel resolves one attack of one combatant against another: rating,
attack and defense checks, critical and fumble tables, hit zones, damage and
injuries. Combatants live in an encounter file or a PostgreSQL database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "configuration file (YAML)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the configuration")

	root.AddCommand(
		newResolveCmd(flags),
		newImportCmd(flags),
		newHistoryCmd(flags),
		newRulesCmd(flags),
		newVersionCmd(),
	)
	return root
}

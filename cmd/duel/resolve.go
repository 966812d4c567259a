package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/decision"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/observability"
)

type resolveFlags struct {
	ranged  bool
	seed    int64
	auto    bool
	noColor bool
}

func newResolveCmd(global *globalFlags) *cobra.Command {
	flags := &resolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve ATTACKER DEFENDER",
		Short: "Resolve one attack of ATTACKER against DEFENDER",
		Long: `Resolve loads both combatants, walks through the exchange asking for
every decision on the terminal, prints the transcript, and writes both
records back in one commit. Cancelling (Ctrl-C or "q") writes nothing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, global, flags, args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&flags.ranged, "ranged", false, "attack with a ranged weapon")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "replay with a deterministic dice seed")
	cmd.Flags().BoolVar(&flags.auto, "auto", false, "answer every prompt with its default")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable ANSI colors in prompts")
	return cmd
}

func runResolve(cmd *cobra.Command, global *globalFlags, flags *resolveFlags, attackerID, defenderID string) error {
	a, err := newApp(global)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	src := dice.NewCryptoSource()
	if cmd.Flags().Changed("seed") {
		src = dice.NewSeededSource(flags.seed)
		a.logger.Info("replaying with seed", zap.Int64("seed", flags.seed))
	}
	roller := dice.NewLoggedRoller(src, a.logger)

	var decide decision.Provider = decision.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), !flags.noColor)
	if flags.auto {
		decide = decision.Auto()
	}

	engine, metrics, err := buildEngine(ctx, a, decide, roller)
	if err != nil {
		return err
	}

	class := character.Melee
	if flags.ranged {
		class = character.Ranged
	}
	ex, err := engine.Resolve(ctx, combat.Request{AttackerID: attackerID, DefenderID: defenderID, Class: class})
	switch {
	case errors.Is(err, combat.ErrCancelled):
		fmt.Fprintln(cmd.OutOrStdout(), "exchange cancelled; nothing was written")
		return nil
	case err != nil:
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), ex.Log.String())
	if metrics != nil {
		if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warn("metrics export failed", zap.Error(err))
		}
	}
	return nil
}

// buildEngine wires the configured rule data, store, hooks and metrics.
func buildEngine(ctx context.Context, a *app, decide decision.Provider, roller *dice.Roller) (*combat.Engine, *observability.Metrics, error) {
	r, err := a.rules()
	if err != nil {
		return nil, nil, err
	}
	conds, err := a.conditions()
	if err != nil {
		return nil, nil, err
	}
	sits, err := a.situations()
	if err != nil {
		return nil, nil, err
	}
	st, err := a.store(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []combat.Option{combat.WithConditions(conds), combat.WithSituations(sits)}
	hooks, err := a.hooks(roller)
	if err != nil {
		return nil, nil, err
	}
	if hooks != nil {
		opts = append(opts, combat.WithHooks(hooks))
	}
	metrics := a.metrics()
	if metrics == nil {
		return combat.NewEngine(r, st, decide, roller, a.logger, opts...), nil, nil
	}
	opts = append(opts, combat.WithRecorder(metrics))
	return combat.NewEngine(r, st, decide, roller, a.logger, opts...), metrics, nil
}

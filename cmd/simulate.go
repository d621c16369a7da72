package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gamblelog/simulator"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	system     string
	unit       int64
	bankroll   int64
	payout     string
	winRate    float64
	outcomes   string
	rounds     int
	seed       uint64
	trials     int
	showSteps  bool
	seedWasSet bool
}

func newSimulateCommand() *cobra.Command {
	opts := &simulateOptions{}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a betting system",
		Long: `Simulate one of the betting systems against a fixed W/L sequence
or a number of random rounds, and estimate the chance of going broke.

Examples:
  gamblelog simulate --system martingale --unit 100 --bankroll 10000 --outcomes LLLWLW
  gamblelog simulate --system cocomo --unit 10 --bankroll 5000 --rounds 500 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedWasSet = cmd.Flags().Changed("seed")
			return runSimulate(cmd.OutOrStdout(), opts)
		},
	}

	flags := simulateCmd.Flags()
	flags.StringVarP(&opts.system, "system", "s", string(simulator.Martingale), "Betting system (martingale, paroli, montecarlo, cocomo, dalembert, thirtyone)")
	flags.Int64VarP(&opts.unit, "unit", "u", 100, "Base stake")
	flags.Int64VarP(&opts.bankroll, "bankroll", "b", 10000, "Starting bankroll")
	flags.StringVar(&opts.payout, "payout", "", "Gross payout multiplier (default depends on the system)")
	flags.Float64Var(&opts.winRate, "win-rate", 0.5, "Win probability for random rounds")
	flags.StringVarP(&opts.outcomes, "outcomes", "o", "", "Fixed W/L sequence, e.g. WLLW")
	flags.IntVarP(&opts.rounds, "rounds", "r", 100, "Random rounds when no outcomes are given")
	flags.Uint64Var(&opts.seed, "seed", 0, "Random seed (default: current time)")
	flags.IntVar(&opts.trials, "trials", 0, "Also estimate bankruptcy with this many Monte Carlo trials")
	flags.BoolVar(&opts.showSteps, "steps", false, "Print every round")

	return simulateCmd
}

func runSimulate(out io.Writer, opts *simulateOptions) error {
	system, err := simulator.ParseSystem(opts.system)
	if err != nil {
		return err
	}

	cfg := simulator.Config{
		System:   system,
		Unit:     opts.unit,
		Bankroll: opts.bankroll,
		WinRate:  opts.winRate,
	}
	if opts.payout != "" {
		if cfg.Payout, err = decimal.NewFromString(opts.payout); err != nil {
			return fmt.Errorf("invalid payout %q: %w", opts.payout, err)
		}
	}

	seed := opts.seed
	if !opts.seedWasSet {
		seed = uint64(time.Now().UnixNano())
	}

	var result *simulator.Result
	rounds := opts.rounds
	if opts.outcomes != "" {
		outcomes, err := simulator.ParseOutcomes(opts.outcomes)
		if err != nil {
			return err
		}
		rounds = len(outcomes)
		result, err = simulator.Run(cfg, outcomes)
		if err != nil {
			return err
		}
	} else {
		result, err = simulator.RunRandom(cfg, rounds, seed)
		if err != nil {
			return err
		}
	}

	probability, err := simulator.BankruptcyProbability(cfg, rounds)
	if err != nil {
		return err
	}

	info, _ := simulator.Describe(system)
	fmt.Fprintf(out, "%s: %s\n\n", info.Name, info.Summary)

	if opts.showSteps {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "round\tstake\tresult\tprofit\tbalance\t")
		for _, step := range result.Steps {
			outcome := "L"
			if step.Won {
				outcome = "W"
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%+d\t%d\t\n", step.Round, step.Stake, outcome, step.Profit, step.Balance)
		}
		tw.Flush()
		fmt.Fprintln(out)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "payout\tx%s\n", result.Config.Payout.String())
	fmt.Fprintf(tw, "rounds played\t%d of %d (%d W / %d L)\n", len(result.Steps), rounds, result.Wins, result.Losses)
	fmt.Fprintf(tw, "final balance\t%d (%+d)\n", result.FinalBalance, result.FinalBalance-cfg.Bankroll)
	fmt.Fprintf(tw, "peak / trough\t%d / %d\n", result.Peak, result.Trough)
	fmt.Fprintf(tw, "max stake\t%d\n", result.MaxStake)
	fmt.Fprintf(tw, "bankrupt\t%t\n", result.Bankrupt)
	fmt.Fprintf(tw, "covered losses\t%d\n", simulator.CoveredLosses(result.Config))
	fmt.Fprintf(tw, "bankruptcy probability\t%.2f%% over %d rounds\n", probability*100, rounds)
	if opts.outcomes == "" {
		fmt.Fprintf(tw, "seed\t%d\n", seed)
	}
	tw.Flush()

	if opts.trials > 0 {
		estimate, err := simulator.EstimateBankruptcy(cfg, rounds, opts.trials, seed)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "monte carlo estimate  %.2f%% over %d trials\n", estimate*100, opts.trials)
	}

	return nil
}

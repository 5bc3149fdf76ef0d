package application

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/qlearning"
	"github.com/rocketscienceinc/tictactoe-solver/internal/solver"
	"github.com/rocketscienceinc/tictactoe-solver/transport/rest"
)

const defaultReportLimit = 10

// samplePositions are printed after a solve.
var samplePositions = []string{
	"X..O.....", // O answers a corner with an edge
	"X...O....", // corner against centre
	"XX.OO....", // X to complete the top row
}

func (that *application) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Solve tic-tac-toe by value iteration and Q-learning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetOut(that.out)
	root.PersistentFlags().StringP("format", "f", formatText, "output format: text, json or yaml")

	root.AddCommand(
		that.enumerateCommand(),
		that.solveCommand(),
		that.evaluateCommand(),
		that.trainCommand(),
		that.allCommand(),
		that.serveCommand(),
		that.reportsCommand(),
	)

	return root
}

func (that *application) enumerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enumerate",
		Short: "Count every board reachable from the empty board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, report, err := that.analyzer.Enumerate(cmd.Context())
			if err != nil {
				return err
			}

			return that.render(cmd, report, func() {
				fmt.Fprintf(that.out, "Total number of legal tic-tac-toe states: %d\n", report.States)
			})
		},
	}
}

func (that *application) solveCommand() *cobra.Command {
	var epsilon float64

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run value iteration and print sample positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, report, err := that.analyzer.Solve(cmd.Context(), epsilon)
			if err != nil {
				return err
			}

			return that.render(cmd, report, func() {
				fmt.Fprintf(that.out, "Value of empty board: %g\n", *report.EmptyBoardValue)
				fmt.Fprintf(that.out, "Converged after %d sweeps over %d states\n", report.Sweeps, report.States)

				for _, s := range samplePositions {
					value, err := table.ValueOf(s)
					if err != nil {
						fmt.Fprintf(that.out, "\n%s: %v\n", s, err)
						continue
					}

					fmt.Fprintf(that.out, "\nPosition:\n")
					printBoard(that.out, entity.MustParseBoard(s))
					fmt.Fprintf(that.out, "Value: %g\n", value)
				}
			})
		},
	}

	cmd.Flags().Float64Var(&epsilon, "epsilon", that.conf.Solver.Epsilon, "convergence tolerance")

	return cmd
}

func (that *application) evaluateCommand() *cobra.Command {
	var epsilon float64

	cmd := &cobra.Command{
		Use:   "evaluate BOARD",
		Short: "Print the value of a board and of each of its moves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := entity.ParseBoard(args[0])
			if err != nil {
				return err
			}

			table, err := solver.ValueIteration(epsilon)
			if err != nil {
				return err
			}

			value, err := table.Value(board)
			if err != nil {
				return err
			}

			evaluation := boardEvaluation{
				Board:  board.String(),
				Value:  value,
				Result: board.DetermineResult().String(),
			}

			if !board.IsTerminal() {
				if evaluation.Moves, err = table.MoveValues(board); err != nil {
					return err
				}

				if evaluation.Best, err = table.BestMoves(board); err != nil {
					return err
				}

				evaluation.Turn = board.Turn().String()
			}

			return that.render(cmd, evaluation, func() {
				printBoard(that.out, board)
				fmt.Fprintf(that.out, "Value: %g (%s)\n", value, evaluation.Result)

				if evaluation.Turn != "" {
					fmt.Fprintf(that.out, "%s to move\n", evaluation.Turn)
				}

				for _, mv := range evaluation.Moves {
					fmt.Fprintf(that.out, "Move %s: %g\n", mv.Move, mv.Value)
				}
			})
		},
	}

	cmd.Flags().Float64Var(&epsilon, "epsilon", that.conf.Solver.Epsilon, "convergence tolerance")

	return cmd
}

type boardEvaluation struct {
	Board  string             `json:"board" yaml:"board"`
	Value  float64            `json:"value" yaml:"value"`
	Result string             `json:"result" yaml:"result"`
	Turn   string             `json:"turn,omitempty" yaml:"turn,omitempty"`
	Moves  []solver.MoveValue `json:"moves,omitempty" yaml:"moves,omitempty"`
	Best   []entity.Move      `json:"best,omitempty" yaml:"best,omitempty"`
}

func (that *application) qlearningConfig() qlearning.Config {
	return qlearning.Config{
		Alpha:        that.conf.QLearning.Alpha,
		Epsilon:      that.conf.QLearning.Epsilon,
		Gamma:        that.conf.QLearning.Gamma,
		EpsilonDecay: that.conf.QLearning.EpsilonDecay,
		EpsilonMin:   that.conf.QLearning.EpsilonMin,
		Seed:         that.conf.QLearning.Seed,
	}
}

func (that *application) trainCommand() *cobra.Command {
	var (
		episodes int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Q-learning agent by self-play",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := that.qlearningConfig()
			conf.Seed = seed

			agent, report, err := that.analyzer.Train(cmd.Context(), conf, episodes)
			if err != nil {
				return err
			}

			return that.render(cmd, report, func() {
				that.printOpening(agent, report)
			})
		},
	}

	cmd.Flags().IntVar(&episodes, "episodes", that.conf.QLearning.Episodes, "number of self-play episodes")
	cmd.Flags().Int64Var(&seed, "seed", that.conf.QLearning.Seed, "random seed, 0 seeds from the clock")

	return cmd
}

func (that *application) printOpening(agent *qlearning.Agent, report *entity.Report) {
	fmt.Fprintf(that.out, "Learned Q-values for initial state:\n")

	empty := entity.EmptyBoard()
	actions, err := agent.Q().Lookup(empty.String())
	if err != nil {
		fmt.Fprintf(that.out, "%v\n", err)
		return
	}

	for _, move := range empty.LegalMoves() {
		fmt.Fprintf(that.out, "Move %s: %.3f\n", move, actions[move])
	}

	fmt.Fprintf(that.out, "Best opening move: %s\n", report.Training.OpeningMove)
}

// allCommand - solves and trains concurrently, the two share nothing but the board model.
func (that *application) allCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Enumerate, solve and train in one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var reports [3]*entity.Report

			g, ctx := errgroup.WithContext(cmd.Context())

			g.Go(func() error {
				_, report, err := that.analyzer.Enumerate(ctx)
				reports[0] = report
				return err
			})

			g.Go(func() error {
				_, report, err := that.analyzer.Solve(ctx, that.conf.Solver.Epsilon)
				reports[1] = report
				return err
			})

			g.Go(func() error {
				_, report, err := that.analyzer.Train(ctx, that.qlearningConfig(), that.conf.QLearning.Episodes)
				reports[2] = report
				return err
			})

			if err := g.Wait(); err != nil {
				return err
			}

			return that.render(cmd, reports[:], func() {
				for _, report := range reports {
					printReport(that.out, report)
				}
			})
		},
	}
}

func (that *application) serveCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Solve once and serve board values and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, _, err := that.analyzer.Solve(cmd.Context(), that.conf.Solver.Epsilon)
			if err != nil {
				return err
			}

			that.logger.Info("Starting HTTP server", "port", port)

			return rest.Start(cmd.Context(), port, rest.NewHandlers(that.logger, table))
		},
	}

	cmd.Flags().StringVar(&port, "port", that.conf.HTTPPort, "HTTP port")

	return cmd
}

func (that *application) reportsCommand() *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List the latest stored run reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if that.reportRepo == nil {
				return ErrStorageDisabled
			}

			reports, err := that.reportRepo.ListLatest(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return that.render(cmd, reports, func() {
				for _, report := range reports {
					printReport(that.out, report)
				}
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", defaultReportLimit, "number of reports")

	return cmd
}

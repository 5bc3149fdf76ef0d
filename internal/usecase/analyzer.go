package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/enumerator"
	"github.com/rocketscienceinc/tictactoe-solver/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-solver/internal/qlearning"
	"github.com/rocketscienceinc/tictactoe-solver/internal/solver"
)

// episodes trained between two context checks
const trainingChunk = 1000

type reportRepo interface {
	Create(ctx context.Context, report *entity.Report) error
}

// Analyzer runs the enumerator, the solver and the trainer, and records a report for every run.
type Analyzer struct {
	logger     *slog.Logger
	reportRepo reportRepo
	now        func() time.Time
}

// NewAnalyzer - reportRepo may be nil, reports are then only returned.
func NewAnalyzer(logger *slog.Logger, reportRepo reportRepo) *Analyzer {
	return &Analyzer{
		logger:     logger.With("component", "analyzer"),
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

func (that *Analyzer) newReport(kind string, started time.Time) *entity.Report {
	return &entity.Report{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: started,
		Elapsed:   that.now().Sub(started),
	}
}

func (that *Analyzer) Enumerate(ctx context.Context) (*enumerator.StateSet, *entity.Report, error) {
	log := that.logger.With("method", "Enumerate")
	started := that.now()

	states := enumerator.Enumerate()

	report := that.newReport(entity.KindEnumerate, started)
	report.States = states.Len()

	metrics.StatesEnumerated.Set(float64(states.Len()))
	metrics.ObserveRun(entity.KindEnumerate, report.Elapsed.Seconds(), nil)

	log.Info("states enumerated", "states", report.States, "elapsed", report.Elapsed)
	that.saveReport(ctx, report)

	return states, report, nil
}

func (that *Analyzer) Solve(ctx context.Context, epsilon float64) (*solver.ValueTable, *entity.Report, error) {
	log := that.logger.With("method", "Solve")
	started := that.now()

	states := enumerator.Enumerate()
	table, err := solver.Solve(states.Boards(), solver.Options{Epsilon: epsilon})
	if err != nil {
		metrics.ObserveRun(entity.KindSolve, that.now().Sub(started).Seconds(), err)
		return nil, nil, fmt.Errorf("failed to solve: %w", err)
	}

	report := that.newReport(entity.KindSolve, started)
	report.States = table.Len()
	report.Epsilon = table.Epsilon()
	report.Sweeps = table.Sweeps()
	report.Deltas = table.Deltas()

	if value, err := table.Value(entity.EmptyBoard()); err == nil {
		report.EmptyBoardValue = &value
	}

	metrics.StatesEnumerated.Set(float64(states.Len()))
	metrics.SolverSweeps.Add(float64(table.Sweeps()))
	metrics.SolverLastDelta.Set(report.Deltas[len(report.Deltas)-1])
	metrics.ObserveRun(entity.KindSolve, report.Elapsed.Seconds(), nil)

	log.Info("value iteration converged", "states", report.States, "sweeps", report.Sweeps, "elapsed", report.Elapsed)
	for i, delta := range report.Deltas {
		log.Debug("sweep", "sweep", i+1, "delta", delta)
	}

	that.saveReport(ctx, report)

	return table, report, nil
}

// Train - trains a fresh agent. Cancelling ctx stops training between chunks of episodes.
func (that *Analyzer) Train(ctx context.Context, conf qlearning.Config, episodes int) (*qlearning.Agent, *entity.Report, error) {
	log := that.logger.With("method", "Train")
	started := that.now()

	agent := qlearning.NewAgent(conf)

	for done := 0; done < episodes; {
		if err := ctx.Err(); err != nil {
			metrics.ObserveRun(entity.KindTrain, that.now().Sub(started).Seconds(), err)
			return nil, nil, fmt.Errorf("training stopped after %d episodes: %w", done, err)
		}

		chunk := min(trainingChunk, episodes-done)
		if err := agent.Train(chunk); err != nil {
			metrics.ObserveRun(entity.KindTrain, that.now().Sub(started).Seconds(), err)
			return nil, nil, fmt.Errorf("failed to train: %w", err)
		}

		done += chunk
		metrics.TrainingEpisodes.Add(float64(chunk))
		metrics.ExplorationRate.Set(agent.Epsilon())
	}

	opening, err := agent.BestMove(entity.EmptyBoard())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pick opening move: %w", err)
	}

	report := that.newReport(entity.KindTrain, started)
	report.Training = &entity.TrainingSummary{
		Episodes:      episodes,
		Alpha:         conf.Alpha,
		Gamma:         conf.Gamma,
		StartEpsilon:  conf.Epsilon,
		FinalEpsilon:  agent.Epsilon(),
		VisitedStates: agent.Q().States(),
		OpeningMove:   opening,
	}

	metrics.QTableStates.Set(float64(agent.Q().States()))
	metrics.ObserveRun(entity.KindTrain, report.Elapsed.Seconds(), nil)

	log.Info("training finished",
		"episodes", episodes,
		"epsilon", agent.Epsilon(),
		"states", agent.Q().States(),
		"opening", opening.String(),
		"elapsed", report.Elapsed,
	)
	that.saveReport(ctx, report)

	return agent, report, nil
}

// saveReport - a failed store is logged, it never fails the run.
func (that *Analyzer) saveReport(ctx context.Context, report *entity.Report) {
	if that.reportRepo == nil {
		return
	}

	log := that.logger.With("method", "saveReport", "report", report.ID)

	if err := that.reportRepo.Create(ctx, report); err != nil {
		log.Error("failed to save report", "error", err)
		return
	}

	log.Debug("report saved", "kind", report.Kind)
}

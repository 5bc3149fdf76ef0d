package solver

import (
	"fmt"
	"math"
	"slices"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/enumerator"
)

const DefaultEpsilon = 1e-4

// Order decides the order in which non-terminal states are relaxed within a sweep.
// It changes the number of sweeps, never the fixed point.
type Order int

const (
	// OrderDiscovery relaxes states in the order the enumerator visited them.
	OrderDiscovery Order = iota
	// OrderBackward relaxes states with more marks first, so a single sweep settles every value.
	OrderBackward
)

type Options struct {
	Epsilon float64
	Order   Order
}

func (that Options) epsilon() float64 {
	if that.Epsilon <= 0 {
		return DefaultEpsilon
	}

	return that.Epsilon
}

// ValueIteration - enumerates every reachable state and solves it with the given tolerance.
func ValueIteration(epsilon float64) (*ValueTable, error) {
	return Solve(enumerator.Enumerate().Boards(), Options{Epsilon: epsilon})
}

// Solve - minimax value iteration over states. Terminal states keep their fixed value, every
// other state starts at 0 and is replaced by the max (X to move) or min (O to move) of its
// successors until a whole sweep changes no value by more than the tolerance.
// Updates read the values already written in the same sweep.
func Solve(states []entity.Board, opts Options) (*ValueTable, error) {
	table := newValueTable(len(states))
	pending := make([]entity.Board, 0, len(states))

	for _, board := range states {
		key := board.String()
		if _, ok := table.values[key]; ok {
			continue
		}

		result := board.DetermineResult()
		table.values[key] = result.Value()

		if !result.IsTerminal() {
			pending = append(pending, board)
		}
	}

	if opts.Order == OrderBackward {
		slices.SortStableFunc(pending, func(a, b entity.Board) int {
			return marks(b) - marks(a)
		})
	}

	epsilon := opts.epsilon()
	for {
		delta, err := table.sweep(pending)
		if err != nil {
			return nil, err
		}

		table.deltas = append(table.deltas, delta)
		if delta <= epsilon {
			break
		}
	}

	table.epsilon = epsilon

	return table, nil
}

func (that *ValueTable) sweep(pending []entity.Board) (float64, error) {
	delta := 0.0

	for _, board := range pending {
		key := board.String()
		old := that.values[key]

		player := board.Turn()
		best, err := that.backup(board, player)
		if err != nil {
			return 0, err
		}

		that.values[key] = best
		delta = math.Max(delta, math.Abs(old-best))
	}

	return delta, nil
}

// backup - the minimax value over the successors of board with player to move.
func (that *ValueTable) backup(board entity.Board, player entity.Mark) (float64, error) {
	best := math.Inf(-1)
	if player == entity.PlayerO {
		best = math.Inf(1)
	}

	for _, next := range board.Successors(player) {
		value, ok := that.values[next.String()]
		if !ok {
			return 0, fmt.Errorf("%w: successor %s of %s was not enumerated", apperror.ErrUnknownState, next, board)
		}

		if player == entity.PlayerX {
			best = math.Max(best, value)
		} else {
			best = math.Min(best, value)
		}
	}

	return best, nil
}

func marks(board entity.Board) int {
	return entity.BoardCells - board.Count(entity.Empty)
}

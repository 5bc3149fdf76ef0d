package solver

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

// ValueTable maps serialized boards to their game value from X's point of view.
// It is read-only once Solve returns.
type ValueTable struct {
	values  map[string]float64
	deltas  []float64
	epsilon float64
}

type MoveValue struct {
	Move  entity.Move `json:"move" yaml:"move"`
	Value float64     `json:"value" yaml:"value"`
}

func newValueTable(size int) *ValueTable {
	return &ValueTable{
		values: make(map[string]float64, size),
	}
}

// Value - the converged value of board. Boards that were not enumerated are an error, never 0.
func (that *ValueTable) Value(board entity.Board) (float64, error) {
	value, ok := that.values[board.String()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", apperror.ErrUnknownState, board)
	}

	return value, nil
}

// ValueOf - like Value, keyed by the 9-character serialized board.
func (that *ValueTable) ValueOf(s string) (float64, error) {
	board, err := entity.ParseBoard(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse board: %w", err)
	}

	return that.Value(board)
}

// MoveValues - the value of the board reached by every legal move of the player to move, row-major.
func (that *ValueTable) MoveValues(board entity.Board) ([]MoveValue, error) {
	if _, err := that.Value(board); err != nil {
		return nil, err
	}

	if board.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is finished", apperror.ErrNoLegalMoves, board)
	}

	player := board.Turn()
	moves := board.LegalMoves()
	out := make([]MoveValue, 0, len(moves))

	for _, move := range moves {
		next, err := board.ApplyMove(move, player)
		if err != nil {
			return nil, fmt.Errorf("failed to apply move: %w", err)
		}

		value, err := that.Value(next)
		if err != nil {
			return nil, err
		}

		out = append(out, MoveValue{Move: move, Value: value})
	}

	return out, nil
}

// BestMoves - the moves reaching the board's value: maximizing for X, minimizing for O.
func (that *ValueTable) BestMoves(board entity.Board) ([]entity.Move, error) {
	moveValues, err := that.MoveValues(board)
	if err != nil {
		return nil, err
	}

	best := moveValues[0].Value
	for _, mv := range moveValues[1:] {
		if board.Turn() == entity.PlayerX && mv.Value > best || board.Turn() == entity.PlayerO && mv.Value < best {
			best = mv.Value
		}
	}

	moves := make([]entity.Move, 0, len(moveValues))
	for _, mv := range moveValues {
		if mv.Value == best {
			moves = append(moves, mv.Move)
		}
	}

	return moves, nil
}

func (that *ValueTable) Len() int {
	return len(that.values)
}

// Sweeps - the number of passes it took to converge, including the final one.
func (that *ValueTable) Sweeps() int {
	return len(that.deltas)
}

// Deltas - the largest change of any state in each sweep.
func (that *ValueTable) Deltas() []float64 {
	return slices.Clone(that.deltas)
}

func (that *ValueTable) Epsilon() float64 {
	return that.epsilon
}

package enumerator

import (
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

// StandardStateCount is the number of boards reachable from the empty board under
// alternating play, without continuing past a win.
const StandardStateCount = 5478

type pending struct {
	board  entity.Board
	player entity.Mark
}

// StateSet is the set of reachable boards, remembering the order in which they were visited.
type StateSet struct {
	order   []entity.Board
	visited map[entity.Board]struct{}
}

func newStateSet() *StateSet {
	return &StateSet{
		order:   make([]entity.Board, 0, StandardStateCount),
		visited: make(map[entity.Board]struct{}, StandardStateCount),
	}
}

// Enumerate - walks the game graph from the empty board with X to move and
// returns every reachable board. Won boards are visited but never expanded.
func Enumerate() *StateSet {
	set := newStateSet()

	stack := []pending{{board: entity.EmptyBoard(), player: entity.PlayerX}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if set.Contains(current.board) {
			continue
		}
		set.add(current.board)

		if current.board.IsWinner(entity.PlayerX) || current.board.IsWinner(entity.PlayerO) {
			continue
		}

		next := current.player.Opponent()
		successors := current.board.Successors(current.player)
		// pushed in reverse so that moves are popped in row-major order
		for i := len(successors) - 1; i >= 0; i-- {
			stack = append(stack, pending{board: successors[i], player: next})
		}
	}

	return set
}

// CountStates - the number of reachable boards.
func CountStates() int {
	return Enumerate().Len()
}

func (that *StateSet) add(board entity.Board) {
	that.visited[board] = struct{}{}
	that.order = append(that.order, board)
}

func (that *StateSet) Contains(board entity.Board) bool {
	_, ok := that.visited[board]
	return ok
}

func (that *StateSet) Len() int {
	return len(that.order)
}

// Boards - the visited boards in visitation order. The returned slice is a copy.
func (that *StateSet) Boards() []entity.Board {
	boards := make([]entity.Board, len(that.order))
	copy(boards, that.order)

	return boards
}

// Strings - the serialized form of every visited board, in visitation order.
func (that *StateSet) Strings() []string {
	out := make([]string, 0, len(that.order))
	for _, board := range that.order {
		out = append(out, board.String())
	}

	return out
}

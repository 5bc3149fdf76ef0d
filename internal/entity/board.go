package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
)

const (
	BoardSide  = 3
	BoardCells = BoardSide * BoardSide
)

// Mark is the content of a single cell. The zero value is an empty cell.
type Mark uint8

const (
	Empty Mark = iota
	PlayerX
	PlayerO
)

const (
	symbolEmpty = '.'
	symbolX     = 'X'
	symbolO     = 'O'
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func (that Mark) String() string {
	return string(that.symbol())
}

func (that Mark) symbol() byte {
	switch that {
	case PlayerX:
		return symbolX
	case PlayerO:
		return symbolO
	default:
		return symbolEmpty
	}
}

// Opponent - returns the other player's mark. Empty has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

type Move struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

func MoveFromCell(cell int) Move {
	return Move{Row: cell / BoardSide, Col: cell % BoardSide}
}

func (that Move) Cell() int {
	return that.Row*BoardSide + that.Col
}

func (that Move) IsValid() bool {
	return that.Row >= 0 && that.Row < BoardSide && that.Col >= 0 && that.Col < BoardSide
}

func (that Move) String() string {
	return fmt.Sprintf("(%d, %d)", that.Row, that.Col)
}

// Board is an immutable 3x3 grid stored in row-major order.
// Boards are comparable, two boards are equal iff their serialized forms are equal.
type Board [BoardCells]Mark

func EmptyBoard() Board {
	return Board{}
}

// ParseBoard - decodes the 9-character row-major form over {'.', 'X', 'O'}.
func ParseBoard(s string) (Board, error) {
	var board Board

	if len(s) != BoardCells {
		return board, fmt.Errorf("%w: %q has length %d, want %d", apperror.ErrInvalidBoard, s, len(s), BoardCells)
	}

	for i := range BoardCells {
		switch s[i] {
		case symbolEmpty:
			board[i] = Empty
		case symbolX:
			board[i] = PlayerX
		case symbolO:
			board[i] = PlayerO
		default:
			return Board{}, fmt.Errorf("%w: %q has unexpected symbol %q at %d", apperror.ErrInvalidBoard, s, s[i], i)
		}
	}

	if err := board.Validate(); err != nil {
		return Board{}, err
	}

	return board, nil
}

// MustParseBoard - like ParseBoard but panics on malformed input. Intended for literals.
func MustParseBoard(s string) Board {
	board, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}

	return board
}

// Validate - checks the mark-count invariant: X moves first, so X has as many marks as O or one more.
// A board where both players have three in a row can never occur.
func (that Board) Validate() error {
	x, o := that.Count(PlayerX), that.Count(PlayerO)
	if x != o && x != o+1 {
		return fmt.Errorf("%w: %s has %d X and %d O", apperror.ErrInvalidBoard, that, x, o)
	}

	if that.IsWinner(PlayerX) && that.IsWinner(PlayerO) {
		return fmt.Errorf("%w: %s is won by both players", apperror.ErrInvalidBoard, that)
	}

	return nil
}

func (that Board) String() string {
	var sb strings.Builder
	sb.Grow(BoardCells)

	for _, cell := range that {
		sb.WriteByte(cell.symbol())
	}

	return sb.String()
}

// Rows - returns the three rows of the board, used for printing.
func (that Board) Rows() [BoardSide]string {
	s := that.String()

	return [BoardSide]string{s[0:3], s[3:6], s[6:9]}
}

func (that Board) At(move Move) Mark {
	return that[move.Cell()]
}

func (that Board) Count(mark Mark) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

// IsWinner - true iff any row, column or diagonal is fully occupied by player.
func (that Board) IsWinner(player Mark) bool {
	if !player.IsPlayer() {
		return false
	}

	for _, combo := range WinCombos {
		if that[combo[0]] == player && that[combo[1]] == player && that[combo[2]] == player {
			return true
		}
	}

	return false
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// LegalMoves - all empty cells in row-major order.
func (that Board) LegalMoves() []Move {
	moves := make([]Move, 0, BoardCells)
	for i, cell := range that {
		if cell == Empty {
			moves = append(moves, MoveFromCell(i))
		}
	}

	return moves
}

// ApplyMove - returns a copy of the board with player's mark at move. The receiver is never modified.
func (that Board) ApplyMove(move Move, player Mark) (Board, error) {
	if !move.IsValid() {
		return that, fmt.Errorf("%w: %s", apperror.ErrInvalidCell, move)
	}

	if !player.IsPlayer() {
		return that, fmt.Errorf("%w: %d", apperror.ErrInvalidMark, player)
	}

	if that.At(move) != Empty {
		return that, fmt.Errorf("%w: %s on %s", apperror.ErrInvalidMove, move, that)
	}

	next := that
	next[move.Cell()] = player

	return next, nil
}

// Successors - boards reachable by one legal move of player, in LegalMoves order.
func (that Board) Successors(player Mark) []Board {
	moves := that.LegalMoves()
	boards := make([]Board, 0, len(moves))

	for _, move := range moves {
		next := that
		next[move.Cell()] = player
		boards = append(boards, next)
	}

	return boards
}

// Turn - the player to move, derived from mark counts: equal counts mean X moves.
func (that Board) Turn() Mark {
	if that.Count(PlayerX) == that.Count(PlayerO) {
		return PlayerX
	}

	return PlayerO
}

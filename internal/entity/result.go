package entity

type Result int

const (
	ResultOngoing Result = iota
	ResultXWins
	ResultOWins
	ResultDraw
)

func (that Result) String() string {
	switch that {
	case ResultXWins:
		return "X wins"
	case ResultOWins:
		return "O wins"
	case ResultDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

func (that Result) IsTerminal() bool {
	return that != ResultOngoing
}

// Value - the fixed value of a finished game from X's point of view.
func (that Result) Value() float64 {
	switch that {
	case ResultXWins:
		return 1.0
	case ResultOWins:
		return -1.0
	default:
		return 0.0
	}
}

// DetermineResult - X win is checked first, then O win, then a full board is a draw.
func (that Board) DetermineResult() Result {
	switch {
	case that.IsWinner(PlayerX):
		return ResultXWins
	case that.IsWinner(PlayerO):
		return ResultOWins
	case that.IsFull():
		return ResultDraw
	default:
		return ResultOngoing
	}
}

func (that Board) IsTerminal() bool {
	return that.DetermineResult().IsTerminal()
}

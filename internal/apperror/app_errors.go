package apperror

import "errors"

var (
	ErrInvalidMove    = errors.New("cell is already occupied")
	ErrInvalidCell    = errors.New("invalid cell index")
	ErrInvalidBoard   = errors.New("invalid board")
	ErrInvalidMark    = errors.New("invalid player mark")
	ErrUnknownState   = errors.New("unknown state")
	ErrNoLegalMoves   = errors.New("no legal moves")
	ErrReportNotFound = errors.New("report not found")
)

package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/solver"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
	ValueHandler(w http.ResponseWriter, r *http.Request)
}

type valueTable interface {
	Value(board entity.Board) (float64, error)
	MoveValues(board entity.Board) ([]solver.MoveValue, error)
}

type handlers struct {
	logger *slog.Logger
	table  valueTable
}

func NewHandlers(logger *slog.Logger, table valueTable) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		table:  table,
	}
}

type moveValueResponse struct {
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Value float64 `json:"value"`
}

type valueResponse struct {
	Board  string              `json:"board"`
	Value  float64             `json:"value"`
	Turn   string              `json:"turn,omitempty"`
	Result string              `json:"result"`
	Moves  []moveValueResponse `json:"moves,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) ValueHandler(w http.ResponseWriter, r *http.Request) {
	board, err := entity.ParseBoard(r.URL.Query().Get("board"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	value, err := that.table.Value(board)
	if errors.Is(err, apperror.ErrUnknownState) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	if err != nil {
		that.logger.Error("failed to look up value", "board", board.String(), "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	result := board.DetermineResult()
	response := valueResponse{
		Board:  board.String(),
		Value:  value,
		Result: result.String(),
	}

	if !result.IsTerminal() {
		moveValues, err := that.table.MoveValues(board)
		if err != nil {
			that.logger.Error("failed to look up move values", "board", board.String(), "error", err)
			that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		response.Turn = board.Turn().String()
		for _, mv := range moveValues {
			response.Moves = append(response.Moves, moveValueResponse{Row: mv.Move.Row, Col: mv.Move.Col, Value: mv.Value})
		}
	}

	that.writeJSON(w, http.StatusOK, response)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

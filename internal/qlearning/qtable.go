package qlearning

import (
	"fmt"
	"maps"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

// QTable is a sparse state -> move -> estimate mapping. Entries are created at 0.0 on first access
// and are never removed.
type QTable struct {
	values map[string]map[entity.Move]float64
}

func NewQTable() *QTable {
	return &QTable{
		values: make(map[string]map[entity.Move]float64),
	}
}

func (that *QTable) actions(state string) map[entity.Move]float64 {
	actions, ok := that.values[state]
	if !ok {
		actions = make(map[entity.Move]float64)
		that.values[state] = actions
	}

	return actions
}

// Value - get-or-insert accessor, unseen pairs start at 0.0.
func (that *QTable) Value(state string, move entity.Move) float64 {
	actions := that.actions(state)

	value, ok := actions[move]
	if !ok {
		actions[move] = 0.0
	}

	return value
}

func (that *QTable) set(state string, move entity.Move, value float64) {
	that.actions(state)[move] = value
}

// Lookup - read-only accessor for a visited state. The returned map is a copy.
func (that *QTable) Lookup(state string) (map[entity.Move]float64, error) {
	actions, ok := that.values[state]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownState, state)
	}

	return maps.Clone(actions), nil
}

// States - the number of states that have at least been touched.
func (that *QTable) States() int {
	return len(that.values)
}

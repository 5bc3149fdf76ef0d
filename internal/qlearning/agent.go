package qlearning

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

const (
	DefaultAlpha        = 0.1
	DefaultEpsilon      = 0.1
	DefaultGamma        = 0.9
	DefaultEpsilonDecay = 0.9999
	DefaultEpsilonMin   = 0.01
)

type Config struct {
	Alpha        float64
	Epsilon      float64
	Gamma        float64
	EpsilonDecay float64
	EpsilonMin   float64
	// Seed of the agent's random source, 0 seeds from the clock.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Alpha:        DefaultAlpha,
		Epsilon:      DefaultEpsilon,
		Gamma:        DefaultGamma,
		EpsilonDecay: DefaultEpsilonDecay,
		EpsilonMin:   DefaultEpsilonMin,
	}
}

// Agent learns tic-tac-toe by self-play, both marks share one Q-table.
type Agent struct {
	conf    Config
	epsilon float64
	q       *QTable
	rng     *rand.Rand
}

func NewAgent(conf Config) *Agent {
	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Agent{
		conf:    conf,
		epsilon: conf.Epsilon,
		q:       NewQTable(),
		rng:     rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
	}
}

// TrainQLearning - trains a fresh agent for a fixed number of episodes.
func TrainQLearning(episodes int, alpha, epsilon, gamma float64) (*Agent, error) {
	conf := DefaultConfig()
	conf.Alpha = alpha
	conf.Epsilon = epsilon
	conf.Gamma = gamma

	agent := NewAgent(conf)
	if err := agent.Train(episodes); err != nil {
		return nil, err
	}

	return agent, nil
}

func (that *Agent) Q() *QTable {
	return that.q
}

// Epsilon - the current exploration rate.
func (that *Agent) Epsilon() float64 {
	return that.epsilon
}

func (that *Agent) Config() Config {
	return that.conf
}

// Reset - forgets everything learned and restores the initial exploration rate.
func (that *Agent) Reset() {
	that.q = NewQTable()
	that.epsilon = that.conf.Epsilon
}

// Reward - outcome of board for the player who just moved. The second value is false while the
// game goes on. The opponent's win is checked on the same board, which only matters for a board
// the mover did not produce.
func (that *Agent) Reward(board entity.Board, mover entity.Mark) (float64, bool) {
	switch {
	case board.IsWinner(mover):
		return 1.0, true
	case board.IsWinner(mover.Opponent()):
		return -1.0, true
	case board.IsFull():
		return 0.0, true
	default:
		return 0.0, false
	}
}

// ChooseAction - epsilon-greedy: a uniformly random legal move with probability epsilon,
// otherwise a uniformly random move among those with the highest Q-value.
// The player to move does not change the choice, both marks read the same table.
func (that *Agent) ChooseAction(board entity.Board, _ entity.Mark) (entity.Move, error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return entity.Move{}, fmt.Errorf("%w: %s", apperror.ErrNoLegalMoves, board)
	}

	if that.rng.Float64() < that.epsilon {
		return moves[that.rng.Intn(len(moves))], nil
	}

	return that.greedy(board.String(), moves), nil
}

// BestMove - the greedy move for board, never explores.
func (that *Agent) BestMove(board entity.Board) (entity.Move, error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return entity.Move{}, fmt.Errorf("%w: %s", apperror.ErrNoLegalMoves, board)
	}

	return that.greedy(board.String(), moves), nil
}

func (that *Agent) greedy(state string, moves []entity.Move) entity.Move {
	best := make([]entity.Move, 0, len(moves))
	bestValue := math.Inf(-1)

	for _, move := range moves {
		value := that.q.Value(state, move)

		switch {
		case value > bestValue:
			bestValue = value
			best = append(best[:0], move)
		case value == bestValue:
			best = append(best, move)
		}
	}

	return best[that.rng.Intn(len(best))]
}

// maxValue - the highest Q-value over moves in state, creating missing entries.
func (that *Agent) maxValue(state string, moves []entity.Move) float64 {
	best := math.Inf(-1)
	for _, move := range moves {
		best = math.Max(best, that.q.Value(state, move))
	}

	return best
}

// learn - one temporal-difference backup. A terminal step moves towards the reward,
// a non-terminal one towards the discounted best estimate of the next state.
func (that *Agent) learn(state string, move entity.Move, target float64) {
	current := that.q.Value(state, move)
	that.q.set(state, move, current+that.conf.Alpha*(target-current))
}

// TrainEpisode - plays one self-play game from the empty board with X to move, learning after every move.
func (that *Agent) TrainEpisode() error {
	board := entity.EmptyBoard()
	player := entity.PlayerX

	for {
		state := board.String()

		move, err := that.ChooseAction(board, player)
		if err != nil {
			return fmt.Errorf("failed to choose action: %w", err)
		}

		next, err := board.ApplyMove(move, player)
		if err != nil {
			return fmt.Errorf("failed to apply move: %w", err)
		}

		if reward, finished := that.Reward(next, player); finished {
			that.learn(state, move, reward)
			break
		}

		that.learn(state, move, that.conf.Gamma*that.maxValue(next.String(), next.LegalMoves()))

		board = next
		player = player.Opponent()
	}

	that.decay()

	return nil
}

func (that *Agent) decay() {
	that.epsilon = math.Max(that.conf.EpsilonMin, that.epsilon*that.conf.EpsilonDecay)
}

// Train - runs a fixed number of episodes, there is no convergence check.
func (that *Agent) Train(episodes int) error {
	for range episodes {
		if err := that.TrainEpisode(); err != nil {
			return err
		}
	}

	return nil
}

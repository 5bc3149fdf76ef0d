package qlearning

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededConfig(seed int64) Config {
	conf := DefaultConfig()
	conf.Seed = seed

	return conf
}

func TestQTable(t *testing.T) {
	t.Run("Unseen pairs start at zero and are remembered", func(t *testing.T) {
		q := NewQTable()

		// When: reading an unseen pair
		value := q.Value(".........", entity.Move{Row: 1, Col: 1})

		// Then: it is zero and the state is now known
		assert.Equal(t, 0.0, value)
		assert.Equal(t, 1, q.States())

		actions, err := q.Lookup(".........")
		require.NoError(t, err)
		assert.Equal(t, map[entity.Move]float64{{Row: 1, Col: 1}: 0.0}, actions)
	})

	t.Run("Lookup of an unvisited state fails", func(t *testing.T) {
		_, err := NewQTable().Lookup("X........")
		require.ErrorIs(t, err, apperror.ErrUnknownState)
	})

	t.Run("Lookup returns a copy", func(t *testing.T) {
		q := NewQTable()
		q.set(".........", entity.Move{}, 0.5)

		actions, err := q.Lookup(".........")
		require.NoError(t, err)
		actions[entity.Move{}] = 1.0

		assert.Equal(t, 0.5, q.Value(".........", entity.Move{}))
	})
}

func TestAgent_Reward(t *testing.T) {
	agent := NewAgent(seededConfig(1))

	t.Run("Mover's win is worth one on every call", func(t *testing.T) {
		board := entity.MustParseBoard("XXXOO....")

		for range 3 {
			reward, finished := agent.Reward(board, entity.PlayerX)
			assert.True(t, finished)
			assert.Equal(t, 1.0, reward)
		}
	})

	t.Run("Opponent's win is checked on the same board", func(t *testing.T) {
		// Given: a board already won by X, evaluated for O
		board := entity.MustParseBoard("XXXOO....")

		// When: computing O's reward
		reward, finished := agent.Reward(board, entity.PlayerO)

		// Then: the stale perspective yields -1
		assert.True(t, finished)
		assert.Equal(t, -1.0, reward)
	})

	t.Run("Draw is worth zero", func(t *testing.T) {
		reward, finished := agent.Reward(entity.MustParseBoard("XOXXOOOXX"), entity.PlayerX)
		assert.True(t, finished)
		assert.Equal(t, 0.0, reward)
	})

	t.Run("Ongoing game has no reward", func(t *testing.T) {
		_, finished := agent.Reward(entity.MustParseBoard("X........"), entity.PlayerX)
		assert.False(t, finished)
	})
}

func TestAgent_ChooseAction(t *testing.T) {
	t.Run("Greedy choice picks the highest estimate", func(t *testing.T) {
		// Given: an agent that never explores, with one preferred move
		conf := seededConfig(2)
		conf.Epsilon = 0
		agent := NewAgent(conf)

		board := entity.MustParseBoard("XO.......")
		agent.Q().set(board.String(), entity.Move{Row: 2, Col: 2}, 0.3)

		// When: choosing repeatedly
		for range 20 {
			move, err := agent.ChooseAction(board, entity.PlayerX)
			require.NoError(t, err)

			// Then: the preferred move is always chosen
			assert.Equal(t, entity.Move{Row: 2, Col: 2}, move)
		}
	})

	t.Run("Ties are broken at random", func(t *testing.T) {
		conf := seededConfig(3)
		conf.Epsilon = 0
		agent := NewAgent(conf)

		seen := make(map[entity.Move]struct{})
		for range 200 {
			move, err := agent.ChooseAction(entity.EmptyBoard(), entity.PlayerX)
			require.NoError(t, err)
			seen[move] = struct{}{}
		}

		assert.Len(t, seen, entity.BoardCells)
	})

	t.Run("Always explores with epsilon one", func(t *testing.T) {
		conf := seededConfig(4)
		conf.Epsilon = 1
		agent := NewAgent(conf)

		board := entity.MustParseBoard("XO.......")
		agent.Q().set(board.String(), entity.Move{Row: 2, Col: 2}, 0.9)

		seen := make(map[entity.Move]struct{})
		for range 200 {
			move, err := agent.ChooseAction(board, entity.PlayerX)
			require.NoError(t, err)
			seen[move] = struct{}{}
		}

		assert.Greater(t, len(seen), 1)
	})

	t.Run("Full board has no action", func(t *testing.T) {
		agent := NewAgent(seededConfig(5))

		_, err := agent.ChooseAction(entity.MustParseBoard("XOXXOOOXX"), entity.PlayerO)
		require.ErrorIs(t, err, apperror.ErrNoLegalMoves)

		_, err = agent.BestMove(entity.MustParseBoard("XOXXOOOXX"))
		require.ErrorIs(t, err, apperror.ErrNoLegalMoves)
	})
}

func TestAgent_learn(t *testing.T) {
	t.Run("Terminal backup moves towards the reward", func(t *testing.T) {
		agent := NewAgent(seededConfig(6))
		move := entity.Move{Row: 0, Col: 2}

		// When: learning a winning move twice
		agent.learn("XX.OO....", move, 1.0)
		agent.learn("XX.OO....", move, 1.0)

		// Then: Q = 0.1, then 0.1 + 0.1*(1-0.1)
		assert.InDelta(t, 0.19, agent.Q().Value("XX.OO....", move), 1e-12)
	})

	t.Run("Non-terminal backup uses the discounted next maximum", func(t *testing.T) {
		agent := NewAgent(seededConfig(7))
		next := entity.MustParseBoard("X........")
		agent.Q().set(next.String(), entity.Move{Row: 1, Col: 1}, 0.5)

		target := agent.conf.Gamma * agent.maxValue(next.String(), next.LegalMoves())
		agent.learn(".........", entity.Move{}, target)

		assert.InDelta(t, 0.1*0.9*0.5, agent.Q().Value(".........", entity.Move{}), 1e-12)
	})
}

func TestAgent_TrainEpisode(t *testing.T) {
	t.Run("Decays exploration after every episode down to the floor", func(t *testing.T) {
		conf := seededConfig(8)
		conf.EpsilonDecay = 0.5
		agent := NewAgent(conf)

		require.NoError(t, agent.TrainEpisode())
		assert.InDelta(t, 0.05, agent.Epsilon(), 1e-12)

		require.NoError(t, agent.Train(10))
		assert.Equal(t, conf.EpsilonMin, agent.Epsilon())
	})

	t.Run("Learns the empty board", func(t *testing.T) {
		agent := NewAgent(seededConfig(9))

		require.NoError(t, agent.TrainEpisode())

		actions, err := agent.Q().Lookup(".........")
		require.NoError(t, err)
		assert.NotEmpty(t, actions)
	})

	t.Run("Reset forgets the table and the decay", func(t *testing.T) {
		agent := NewAgent(seededConfig(10))
		require.NoError(t, agent.Train(100))

		agent.Reset()

		assert.Equal(t, 0, agent.Q().States())
		assert.Equal(t, DefaultEpsilon, agent.Epsilon())
	})

	t.Run("Same seed plays the same games", func(t *testing.T) {
		a := NewAgent(seededConfig(11))
		b := NewAgent(seededConfig(11))

		require.NoError(t, a.Train(500))
		require.NoError(t, b.Train(500))

		assert.Equal(t, a.Q().values, b.Q().values)
	})
}

func TestTrainQLearning(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical training test")
	}

	table, err := solver.ValueIteration(solver.DefaultEpsilon)
	require.NoError(t, err)

	const trials = 5

	safe := 0
	for i := range trials {
		conf := seededConfig(int64(100 + i))
		agent := NewAgent(conf)
		require.NoError(t, agent.Train(50000))

		// Then: the opening is legal and not losing for X under perfect play
		move, err := agent.BestMove(entity.EmptyBoard())
		require.NoError(t, err)

		next, err := entity.EmptyBoard().ApplyMove(move, entity.PlayerX)
		require.NoError(t, err)

		value, err := table.Value(next)
		require.NoError(t, err)
		if value >= 0 {
			safe++
		}

		// And: every learned estimate stays within the reward range
		actions, err := agent.Q().Lookup(".........")
		require.NoError(t, err)
		assert.Len(t, actions, entity.BoardCells)
		for _, q := range actions {
			assert.LessOrEqual(t, q, 1.0)
			assert.GreaterOrEqual(t, q, -1.0)
		}

		assert.Equal(t, DefaultEpsilonMin, agent.Epsilon())
	}

	assert.Equal(t, trials, safe)
}

func TestTrainQLearning_Parameters(t *testing.T) {
	agent, err := TrainQLearning(10, 0.2, 0.5, 0.8)
	require.NoError(t, err)

	conf := agent.Config()
	assert.Equal(t, 0.2, conf.Alpha)
	assert.Equal(t, 0.5, conf.Epsilon)
	assert.Equal(t, 0.8, conf.Gamma)
	assert.Less(t, agent.Epsilon(), 0.5)
	assert.Positive(t, agent.Q().States())
}

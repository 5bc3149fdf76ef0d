package entity

import "time"

const (
	KindEnumerate = "enumerate"
	KindSolve     = "solve"
	KindTrain     = "train"
)

// Report is the summary of a single enumerate, solve or train run. It never carries learned values.
type Report struct {
	ID        string        `json:"id" yaml:"id"`
	Kind      string        `json:"kind" yaml:"kind"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`

	States int `json:"states,omitempty" yaml:"states,omitempty"`

	Epsilon         float64   `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
	Sweeps          int       `json:"sweeps,omitempty" yaml:"sweeps,omitempty"`
	Deltas          []float64 `json:"deltas,omitempty" yaml:"deltas,omitempty"`
	EmptyBoardValue *float64  `json:"empty_board_value,omitempty" yaml:"empty_board_value,omitempty"`

	Training *TrainingSummary `json:"training,omitempty" yaml:"training,omitempty"`
}

type TrainingSummary struct {
	Episodes      int     `json:"episodes" yaml:"episodes"`
	Alpha         float64 `json:"alpha" yaml:"alpha"`
	Gamma         float64 `json:"gamma" yaml:"gamma"`
	StartEpsilon  float64 `json:"start_epsilon" yaml:"start_epsilon"`
	FinalEpsilon  float64 `json:"final_epsilon" yaml:"final_epsilon"`
	VisitedStates int     `json:"visited_states" yaml:"visited_states"`
	OpeningMove   Move    `json:"opening_move" yaml:"opening_move"`
}

func (that *Report) IsTraining() bool {
	return that.Kind == KindTrain
}

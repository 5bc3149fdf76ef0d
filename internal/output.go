package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var errUnknownFormat = errors.New("unknown output format")

// render - writes v as json or yaml, or calls text for the human readable form.
func (that *application) render(cmd *cobra.Command, v any, text func()) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to read format flag: %w", err)
	}

	switch format {
	case formatText:
		text()
		return nil
	case formatJSON:
		encoder := json.NewEncoder(that.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case formatYAML:
		encoder := yaml.NewEncoder(that.out)
		if err = encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func printBoard(w io.Writer, board entity.Board) {
	for _, row := range board.Rows() {
		fmt.Fprintln(w, row)
	}
}

func printReport(w io.Writer, report *entity.Report) {
	fmt.Fprintf(w, "%s %s (%s, %s)\n", report.Kind, report.ID, report.CreatedAt.Format("2006-01-02 15:04:05"), report.Elapsed)

	switch report.Kind {
	case entity.KindEnumerate:
		fmt.Fprintf(w, "  states: %d\n", report.States)
	case entity.KindSolve:
		fmt.Fprintf(w, "  states: %d, sweeps: %d\n", report.States, report.Sweeps)
		if report.EmptyBoardValue != nil {
			fmt.Fprintf(w, "  empty board value: %g\n", *report.EmptyBoardValue)
		}
	case entity.KindTrain:
		if report.Training != nil {
			fmt.Fprintf(w, "  episodes: %d, epsilon: %.4f, states: %d, opening: %s\n",
				report.Training.Episodes, report.Training.FinalEpsilon, report.Training.VisitedStates, report.Training.OpeningMove)
		}
	}
}

package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// RenderResults writes a table of stored evaluation results.
func RenderResults(w io.Writer, results []StoredResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Session", "Task Suite", "Episodes", "Successes", "Success Rate", "Recorded At"})

	for _, result := range results {
		table.Append([]string{
			result.SessionID,
			result.TaskSuite,
			strconv.Itoa(result.Episodes),
			strconv.Itoa(result.Successes),
			strconv.FormatFloat(result.SuccessRate, 'f', 3, 64),
			result.RecordedAt.Format("2006-01-02 15:04:05"),
		})
	}

	table.Render()
}

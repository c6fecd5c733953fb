package experiment

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// RenderSummary writes a table of all declared invocations, enabled or not,
// so the operator sees what a run will and will not start.
func (p Plan) RenderSummary(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Invocation", "Devices", "Task Suite", "Checkpoint", "Enabled", "Foreground"})

	for _, invocation := range p.Invocations {
		table.Append([]string{
			invocation.Name,
			deviceList(invocation.Devices),
			invocation.Workload.TaskSuiteName,
			invocation.Workload.PretrainedCheckpoint,
			strconv.FormatBool(invocation.Enabled),
			strconv.FormatBool(invocation.Foreground),
		})
	}

	table.Render()
}

func deviceList(devices []int) string {
	var devicesStr []string
	for _, device := range devices {
		devicesStr = append(devicesStr, strconv.Itoa(device))
	}
	return strings.Join(devicesStr, ",")
}

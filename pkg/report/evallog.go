package report

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// Result summarizes one evaluation log written by the evaluation script.
type Result struct {
	TaskSuite        string
	Episodes         int
	Successes        int
	TotalSuccessRate float64
}

var (
	taskSuitePattern   = regexp.MustCompile(`^Task suite: (\S+)`)
	episodesPattern    = regexp.MustCompile(`^# episodes completed so far: (\d+)`)
	successesPattern   = regexp.MustCompile(`^# successes: (\d+)`)
	successRatePattern = regexp.MustCompile(`^Current total success rate: ([0-9.]+)`)
)

// ParseEvalLog extracts the final counters from an evaluation log. The
// counters appear repeatedly as the evaluation progresses; the last
// occurrence of each wins.
func ParseEvalLog(r io.Reader) (Result, error) {
	result := Result{}
	rateSeen := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if match := taskSuitePattern.FindStringSubmatch(line); match != nil {
			result.TaskSuite = match[1]
		}
		if match := episodesPattern.FindStringSubmatch(line); match != nil {
			result.Episodes, _ = strconv.Atoi(match[1])
		}
		if match := successesPattern.FindStringSubmatch(line); match != nil {
			result.Successes, _ = strconv.Atoi(match[1])
		}
		if match := successRatePattern.FindStringSubmatch(line); match != nil {
			result.TotalSuccessRate, _ = strconv.ParseFloat(match[1], 64)
			rateSeen = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, errors.Wrap(err, "reading evaluation log failed")
	}

	if result.TaskSuite == "" {
		return Result{}, errors.New("not an evaluation log: no task suite header found")
	}

	if !rateSeen && result.Episodes > 0 {
		result.TotalSuccessRate = float64(result.Successes) / float64(result.Episodes)
	}

	return result, nil
}

// ParseEvalLogFile is a file based helper around ParseEvalLog.
func ParseEvalLogFile(path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "could not open evaluation log %q", path)
	}
	defer file.Close()

	return ParseEvalLog(file)
}

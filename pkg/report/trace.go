package report

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// traceHeader names the four columns the evaluation script appends to its
// motion trace file on every replanning step.
var traceHeader = []string{"xyz_magnitude", "xyz_cosine_similarity", "rot_magnitude", "rot_cosine_similarity"}

const traceColumns = 4

// ConvertTrace reads a motion trace file with four comma- or space-separated
// values per line and writes it as CSV with a header next to the input file.
// Blank lines are ignored, lines with the wrong number of values are skipped
// with a warning. It returns the path of the written CSV file.
func ConvertTrace(inputPath string) (string, error) {
	input, err := os.Open(inputPath)
	if err != nil {
		return "", errors.Wrapf(err, "could not open trace file %q", inputPath)
	}
	defer input.Close()

	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".csv"
	output, err := os.Create(outputPath)
	if err != nil {
		return "", errors.Wrapf(err, "could not create output file %q", outputPath)
	}
	defer output.Close()

	writer := csv.NewWriter(output)
	if err := writer.Write(traceHeader); err != nil {
		return "", errors.Wrap(err, "could not write CSV header")
	}

	scanner := bufio.NewScanner(input)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		values := splitTraceLine(line)
		if len(values) != traceColumns {
			log.Warnf("line %d does not contain %d values, skipping: %q", lineNumber, traceColumns, line)
			continue
		}

		record := make([]string, traceColumns)
		for i, value := range values {
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				// Keep the raw value, matching the tolerant conversion of the
				// original trace tooling.
				log.Warnf("could not parse value %q on line %d, writing as is", value, lineNumber)
				record[i] = value
				continue
			}
			record[i] = strconv.FormatFloat(parsed, 'g', -1, 64)
		}

		if err := writer.Write(record); err != nil {
			return "", errors.Wrapf(err, "could not write CSV record for line %d", lineNumber)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrapf(err, "reading trace file %q failed", inputPath)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errors.Wrapf(err, "writing CSV file %q failed", outputPath)
	}

	return outputPath, nil
}

// splitTraceLine splits on commas first and falls back to whitespace when the
// comma split does not yield the expected number of fields.
func splitTraceLine(line string) []string {
	values := strings.Split(line, ",")
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
	if len(values) != traceColumns {
		values = strings.Fields(line)
	}
	return values
}

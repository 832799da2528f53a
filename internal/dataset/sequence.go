package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultSensorCount is the per-side sensor count of the reference carpet.
const DefaultSensorCount = 32

// ReadSequence reads a pressure sequence file: one sample per line,
// sensorCount readings per sample. Recording exports are irregular, so the
// parser is deliberately permissive: comma, semicolon, tab and space
// separators all occur in the wild, `#` starts a comment line, and
// unparseable or missing readings become zero. Each frame is padded or
// truncated to exactly sensorCount values.
func ReadSequence(path string, sensorCount int) ([][]int, error) {
	if sensorCount <= 0 {
		sensorCount = DefaultSensorCount
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sequence %s: %w", path, err)
	}
	defer f.Close()

	var frames [][]int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == '\t' || r == ' '
		})

		frame := make([]int, sensorCount)
		for i := 0; i < sensorCount && i < len(fields); i++ {
			frame[i] = parseReading(fields[i])
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sequence %s: %w", path, err)
	}

	return frames, nil
}

// parseReading coerces one CSV field to an integer pressure value. Some
// exports write readings as floats; anything unparseable counts as zero.
func parseReading(field string) int {
	if v, err := strconv.Atoi(field); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return int(f)
	}
	return 0
}

package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/franz/speech-janitor/internal/util"
)

// Interval is one annotated span of a TextGrid interval tier
type Interval struct {
	MinTime float64
	MaxTime float64
	Text    string
}

// Tier is a named interval tier
type Tier struct {
	Name      string
	Intervals []Interval
}

// ParseTextGrid reads the interval tiers of a TextGrid in Praat's long text
// format. Point tiers are skipped.
func ParseTextGrid(r io.Reader) ([]Tier, error) {
	var (
		tiers    []Tier
		current  *Tier
		interval *Interval
		isPoints bool
	)

	flushInterval := func() {
		if interval != nil && current != nil {
			current.Intervals = append(current.Intervals, *interval)
		}
		interval = nil
	}
	flushTier := func() {
		flushInterval()
		if current != nil && !isPoints {
			tiers = append(tiers, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))

		switch {
		case line == "item []:":
			continue
		case strings.HasPrefix(line, "item [") && strings.HasSuffix(line, "]:"):
			flushTier()
			current = &Tier{}
			isPoints = false
			continue
		case strings.HasPrefix(line, "intervals [") && strings.HasSuffix(line, "]:"):
			flushInterval()
			interval = &Interval{}
			continue
		case strings.HasPrefix(line, "points ["):
			isPoints = true
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || current == nil {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case key == "class":
			isPoints = unquote(value) != "IntervalTier"
		case key == "name" && interval == nil:
			current.Name = unquote(value)
		case key == "xmin" && interval != nil:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid xmin %q: %w", lineNo, value, util.ErrCorrupt)
			}
			interval.MinTime = v
		case key == "xmax" && interval != nil:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid xmax %q: %w", lineNo, value, util.ErrCorrupt)
			}
			interval.MaxTime = v
		case key == "text" && interval != nil:
			interval.Text = unquote(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read TextGrid: %w", err)
	}
	flushTier()

	return tiers, nil
}

// unquote strips the surrounding quotes of a TextGrid string; doubled quotes
// stand for one quote
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `""`, `"`)
}

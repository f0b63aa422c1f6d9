package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var jsonFence = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ErrNoSummary is returned when a report carries no machine-readable summary.
var ErrNoSummary = errors.New("report has no summary block")

// Summary is the machine-readable tail of the evaluation report.
type Summary struct {
	Rating  float64 `mapstructure:"rating"`
	Hire    bool    `mapstructure:"hire"`
	Verdict string  `mapstructure:"verdict"`
}

// ParseSummary decodes the last JSON block of report. Values are decoded
// leniently: "7", 7 and 7.5 are all accepted ratings, "yes" and "true" are
// accepted hire flags.
func ParseSummary(report string) (*Summary, error) {
	raw := lastJSONBlock(report)
	if raw == "" {
		return nil, ErrNoSummary
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}

	if hire, ok := data["hire"].(string); ok {
		data["hire"] = parseHire(hire)
	}

	var summary Summary
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &summary,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	summary.Verdict = strings.TrimSpace(summary.Verdict)
	if summary.Rating < 0 || summary.Rating > 10 {
		return nil, fmt.Errorf("rating %.1f is out of range 0-10", summary.Rating)
	}

	return &summary, nil
}

func lastJSONBlock(report string) string {
	matches := jsonFence.FindAllStringSubmatch(report, -1)
	if len(matches) > 0 {
		return matches[len(matches)-1][1]
	}

	start := strings.LastIndex(report, "{")
	end := strings.LastIndex(report, "}")
	if start == -1 || end < start {
		return ""
	}
	return report[start : end+1]
}

func parseHire(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "hire":
		return true
	default:
		return false
	}
}

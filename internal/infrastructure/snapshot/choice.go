package snapshot

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ChoiceLabel renders a raw vote choice with the proposal's choice labels.
// Indexes are 1-based. Shapes that do not match the vote type fall back to
// the raw JSON text.
func ChoiceLabel(voteType string, raw json.RawMessage, choices []string) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	switch voteType {
	case "approval", "ranked-choice":
		var picks []int
		if err := json.Unmarshal(raw, &picks); err == nil {
			labels := make([]string, 0, len(picks))
			for _, pick := range picks {
				labels = append(labels, label(pick, choices))
			}
			return strings.Join(labels, ", ")
		}
	case "weighted", "quadratic":
		var weights map[string]float64
		if err := json.Unmarshal(raw, &weights); err == nil {
			keys := make([]string, 0, len(weights))
			for k := range weights {
				keys = append(keys, k)
			}
			slices.SortFunc(keys, func(a, b string) int { return atoi(a) - atoi(b) })

			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, fmt.Sprintf("%s: %s", label(atoi(k), choices), strconv.FormatFloat(weights[k], 'f', -1, 64)))
			}
			return strings.Join(parts, ", ")
		}
	default:
		var pick int
		if err := json.Unmarshal(raw, &pick); err == nil {
			return label(pick, choices)
		}
	}

	return strings.TrimSpace(string(raw))
}

func label(index int, choices []string) string {
	if index >= 1 && index <= len(choices) {
		return choices[index-1]
	}
	return strconv.Itoa(index)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

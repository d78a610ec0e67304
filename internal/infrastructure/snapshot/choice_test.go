package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChoiceLabel(t *testing.T) {
	t.Parallel()

	choices := []string{"For", "Against", "Abstain"}
	cases := []struct {
		name     string
		voteType string
		raw      string
		want     string
	}{
		{"single choice", "single-choice", `1`, "For"},
		{"basic", "basic", `3`, "Abstain"},
		{"out of range index", "basic", `9`, "9"},
		{"approval", "approval", `[1, 3]`, "For, Abstain"},
		{"ranked choice", "ranked-choice", `[2, 1, 3]`, "Against, For, Abstain"},
		{"weighted", "weighted", `{"2": 40, "1": 60.5}`, "For: 60.5, Against: 40"},
		{"quadratic", "quadratic", `{"3": 1}`, "Abstain: 1"},
		{"shape mismatch", "approval", `2`, "2"},
		{"null", "basic", `null`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ChoiceLabel(tc.voteType, json.RawMessage(tc.raw), choices))
		})
	}
}

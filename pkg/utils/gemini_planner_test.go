package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: `{"day":1}`,
			want:  `{"day":1}`,
		},
		{
			name:  "markdown fenced",
			input: "```json\n{\"day\":1}\n```",
			want:  `{"day":1}`,
		},
		{
			name:  "prose around object",
			input: `Here is your plan: {"day":1,"area":"Asakusa"} Hope it helps!`,
			want:  `{"day":1,"area":"Asakusa"}`,
		},
		{
			name:  "braces inside strings",
			input: `{"note":"open { and close }","day":2} trailing`,
			want:  `{"note":"open { and close }","day":2}`,
		},
		{
			name:  "escaped quotes inside strings",
			input: `{"note":"she said \"go\" {now}"} extra`,
			want:  `{"note":"she said \"go\" {now}"}`,
		},
		{
			name:  "array payload",
			input: "```\n[{\"name\":\"Shibuya\"}]\n```",
			want:  `[{"name":"Shibuya"}]`,
		},
		{
			name:  "object preferred over later array",
			input: `{"areas":[{"name":"Ueno"}]}`,
			want:  `{"areas":[{"name":"Ueno"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONResponse(tt.input))
		})
	}
}

func TestTextToVectorIsNormalizedAndStable(t *testing.T) {
	c := &GeminiPlannerClient{}

	a := c.textToVector("Asakusa old town temples")
	b := c.textToVector("asakusa old town temples")

	// Case-insensitive and deterministic.
	assert.Equal(t, a.Slice(), b.Slice())

	var magnitude float64
	for _, v := range a.Slice() {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, magnitude, 1e-3)
}

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOK     bool
		wantIntent string
	}{
		{
			name:       "BareObject",
			input:      `{"intent": "empathy", "confidence": 0.9}`,
			wantOK:     true,
			wantIntent: "empathy",
		},
		{
			name:       "FencedJSONBlock",
			input:      "Here you go:\n```json\n{\"intent\": \"knowledge\"}\n```",
			wantOK:     true,
			wantIntent: "knowledge",
		},
		{
			name:       "FencedPlainBlock",
			input:      "```\n{\"intent\": \"chat\"}\n```",
			wantOK:     true,
			wantIntent: "chat",
		},
		{
			name:       "ObjectWrappedInProse",
			input:      `The classification is {"intent": "deep_dive", "confidence": 0.7} as requested.`,
			wantOK:     true,
			wantIntent: "deep_dive",
		},
		{
			name:       "LeadingWhitespace",
			input:      "  \n\t{\"intent\": \"brainstorm\"}\n",
			wantOK:     true,
			wantIntent: "brainstorm",
		},
		{
			name:   "NoJSONAtAll",
			input:  "I cannot classify that.",
			wantOK: false,
		},
		{
			name:   "BrokenBraces",
			input:  `{"intent": "chat"`,
			wantOK: false,
		},
		{
			name:   "EmptyString",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ExtractJSON(tt.input)
			if !tt.wantOK {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantIntent, result["intent"])
		})
	}
}

func TestExtractJSONPrefersFencedBlock(t *testing.T) {
	// When the whole text is not valid JSON, the fenced block wins over the
	// widest brace span.
	input := "prefix {not json} middle\n```json\n{\"a\": 1}\n```\nsuffix"
	result, ok := ExtractJSON(input)
	require.True(t, ok)
	assert.Equal(t, float64(1), result["a"])
}

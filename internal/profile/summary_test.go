package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullProfile() *Profile {
	return &Profile{
		UpdatedAt:  testNow,
		LogCount:   12,
		PeriodDays: 14,
		EmotionTrends: EmotionTrends{
			TopEmotions: []EmotionCount{
				{Emotion: "anxious", Count: 6},
				{Emotion: "excited", Count: 4},
				{Emotion: "frustrated", Count: 3},
				{Emotion: "relieved", Count: 1},
			},
			TotalEntries: 14,
			RecentTrend:  TrendFatigueIncreasing,
		},
		TopicEmotionMap: map[string]TopicEmotion{
			"work":    {DominantEmotion: "frustrated", Count: 5},
			"deploys": {DominantEmotion: "anxious", Count: 3},
			"running": {DominantEmotion: "achieved", Count: 4},
		},
		PostingPattern: PostingPattern{
			AvgPerDay:       1.2,
			PeakHours:       []int{22, 9, 13},
			FrequencyChange: FrequencyStable,
			TotalLogs:       12,
		},
		Signals: []Signal{
			{Type: SignalStressIncreasing, Severity: SeverityWarning, Description: "直近1週間でストレス・焦りの訴えが増加している"},
		},
	}
}

func TestContextSummaryNilProfile(t *testing.T) {
	assert.Empty(t, ContextSummary(nil))
}

func TestContextSummaryInsufficientEntries(t *testing.T) {
	p := fullProfile()
	p.LogCount = 2
	assert.Empty(t, ContextSummary(p), "fewer than 3 entries gives no summary")
}

func TestContextSummaryFullProfile(t *testing.T) {
	summary := ContextSummary(fullProfile())
	require.NotEmpty(t, summary)

	lines := strings.Split(summary, "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "直近14日間の感情傾向: anxious(6回)、excited(4回)、frustrated(3回)", lines[0])
	assert.Equal(t, "変化: 疲労・ストレスの訴えが増加傾向", lines[1])
	assert.Equal(t, "ストレスと関連が深いトピック: work, deploys", lines[2])
	assert.Equal(t, "ポジティブな感情と結びつくトピック: running", lines[3])
	assert.Equal(t, "⚠ 直近1週間でストレス・焦りの訴えが増加している", lines[4])
}

func TestContextSummaryStableTrendOmitted(t *testing.T) {
	p := fullProfile()
	p.EmotionTrends.RecentTrend = TrendStable
	p.Signals = []Signal{}

	summary := ContextSummary(p)
	assert.NotContains(t, summary, "変化:")
	assert.NotContains(t, summary, "⚠")
}

func TestContextSummaryTopEmotionsCappedAtThree(t *testing.T) {
	summary := ContextSummary(fullProfile())
	assert.NotContains(t, summary, "relieved", "only top-3 emotions named")
}

func TestContextSummaryEmptyAggregatesGiveNothing(t *testing.T) {
	p := &Profile{
		LogCount:        5,
		PeriodDays:      14,
		EmotionTrends:   EmotionTrends{TopEmotions: []EmotionCount{}, RecentTrend: TrendStable},
		TopicEmotionMap: map[string]TopicEmotion{},
		Signals:         []Signal{},
	}
	assert.Empty(t, ContextSummary(p), "no lines means no summary")
}

func TestContextSummaryStressTopicsCappedAtThree(t *testing.T) {
	p := fullProfile()
	p.TopicEmotionMap = map[string]TopicEmotion{
		"a": {DominantEmotion: "frustrated", Count: 9},
		"b": {DominantEmotion: "anxious", Count: 8},
		"c": {DominantEmotion: "angry", Count: 7},
		"d": {DominantEmotion: "frustrated", Count: 6},
	}

	summary := ContextSummary(p)
	assert.Contains(t, summary, "ストレスと関連が深いトピック: a, b, c")
}

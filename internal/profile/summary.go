package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Dominant-emotion groupings used to pick out stress- and comfort-associated
// topics for the summary.
var (
	stressDominant  = map[string]bool{"frustrated": true, "anxious": true, "angry": true}
	comfortDominant = map[string]bool{"achieved": true, "excited": true, "relieved": true}
)

var trendSummaryLabels = map[string]string{
	TrendMoreNegative:      "ネガティブな感情が増加傾向",
	TrendMorePositive:      "ポジティブな感情が増加傾向",
	TrendFatigueIncreasing: "疲労・ストレスの訴えが増加傾向",
}

// ContextSummary reduces a profile to the natural-language block injected
// into response-strategy prompts. Returns "" when the profile carries too
// little signal to summarize (fewer than 3 entries, or nothing to say).
// Pure function, no I/O.
func ContextSummary(p *Profile) string {
	if p == nil || p.LogCount < 3 {
		return ""
	}

	var parts []string

	if len(p.EmotionTrends.TopEmotions) > 0 {
		top := p.EmotionTrends.TopEmotions
		if len(top) > 3 {
			top = top[:3]
		}
		descs := make([]string, len(top))
		for i, e := range top {
			descs[i] = fmt.Sprintf("%s(%d回)", e.Emotion, e.Count)
		}
		parts = append(parts, fmt.Sprintf("直近%d日間の感情傾向: %s", p.PeriodDays, strings.Join(descs, "、")))
	}

	if label, ok := trendSummaryLabels[p.EmotionTrends.RecentTrend]; ok {
		parts = append(parts, "変化: "+label)
	}

	if stress := topicsByDominant(p.TopicEmotionMap, stressDominant, 3); len(stress) > 0 {
		parts = append(parts, "ストレスと関連が深いトピック: "+strings.Join(stress, ", "))
	}
	if comfort := topicsByDominant(p.TopicEmotionMap, comfortDominant, 3); len(comfort) > 0 {
		parts = append(parts, "ポジティブな感情と結びつくトピック: "+strings.Join(comfort, ", "))
	}

	for _, sig := range p.Signals {
		parts = append(parts, "⚠ "+sig.Description)
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n")
}

// topicsByDominant selects topics whose dominant emotion falls in the set,
// sorted by count descending (topic name as tie-break) and capped at n.
func topicsByDominant(topicMap map[string]TopicEmotion, set map[string]bool, n int) []string {
	var topics []string
	for topic, info := range topicMap {
		if set[info.DominantEmotion] {
			topics = append(topics, topic)
		}
	}
	sort.Slice(topics, func(i, j int) bool {
		a, b := topicMap[topics[i]], topicMap[topics[j]]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return topics[i] < topics[j]
	})
	if len(topics) > n {
		topics = topics[:n]
	}
	return topics
}

// Package profile aggregates a user's recent log entries into a behavioral
// profile: emotion trends over two comparison windows, topic-emotion
// associations, posting-pattern statistics and derived signals.
//
// Profiles are rebuilt from scratch on every run and overwrite the stored
// document wholesale. Concurrent rebuilds for the same user are
// last-writer-wins; profiles are idempotently rebuildable so a discarded
// build is not a correctness problem.
package profile

import "time"

// Aggregation windows, in days.
const (
	RecentDays = 14 // full aggregation window
	TrendDays  = 7  // short sub-window compared against the remainder
)

// fetchLimit caps the number of entries considered per build.
const fetchLimit = 200

// Trend labels for EmotionTrends.RecentTrend.
const (
	TrendStable            = "stable"
	TrendMoreNegative      = "more_negative"
	TrendMorePositive      = "more_positive"
	TrendFatigueIncreasing = "fatigue_increasing"
)

// Frequency-change labels for PostingPattern.FrequencyChange.
const (
	FrequencyStable     = "stable"
	FrequencyDecreasing = "decreasing"
	FrequencyIncreasing = "increasing"
)

// Signal severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Signal types.
const (
	SignalFatigueRepetition    = "fatigue_repetition"
	SignalStressIncreasing     = "stress_increasing"
	SignalNegativityIncreasing = "negativity_increasing"
	SignalPostingDecrease      = "posting_decrease"
	SignalStateDominant        = "state_dominant"
)

// EmotionCount is one emotion/frequency pair.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// EmotionTrends summarizes emotion frequency and its change over time.
type EmotionTrends struct {
	TopEmotions  []EmotionCount `json:"top_emotions"`
	TotalEntries int            `json:"total_entries"`
	RecentTrend  string         `json:"recent_trend,omitempty"`
}

// TopicEmotion reports the dominant emotion for one topic together with the
// full distribution. Only topics with at least 2 emotion occurrences are
// retained.
type TopicEmotion struct {
	DominantEmotion string         `json:"dominant_emotion"`
	Count           int            `json:"count"`
	Distribution    map[string]int `json:"distribution"`
}

// PostingPattern describes entry frequency and active hours.
type PostingPattern struct {
	AvgPerDay       float64 `json:"avg_per_day"`
	PeakHours       []int   `json:"peak_hours"`
	FrequencyChange string  `json:"frequency_change"`
	TotalLogs       int     `json:"total_logs"`
}

// Signal is a derived behavioral observation.
type Signal struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Profile is the aggregation result persisted per user. Field names are
// stable: the document is read back by later runs' consumers and by
// response strategies.
type Profile struct {
	UpdatedAt       time.Time               `json:"updated_at"`
	LogCount        int                     `json:"log_count"`
	PeriodDays      int                     `json:"period_days"`
	EmotionTrends   EmotionTrends           `json:"emotion_trends"`
	TopicEmotionMap map[string]TopicEmotion `json:"topic_emotion_map"`
	PostingPattern  PostingPattern          `json:"posting_pattern"`
	Signals         []Signal                `json:"signals"`
}

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"haven/internal/store"
)

// Emotion sets used for trend comparison. The vocabulary is open; these are
// the labels the trend math cares about.
var (
	negativeEmotions = map[string]bool{"frustrated": true, "angry": true, "anxious": true, "confused": true}
	positiveEmotions = map[string]bool{"achieved": true, "excited": true, "relieved": true}
	fatigueEmotions  = map[string]bool{"frustrated": true, "anxious": true}
)

// fatigueKeywords trigger the fatigue-repetition signal when found in entry
// text.
var fatigueKeywords = []string{"疲れ", "だるい", "眠い", "しんどい", "つらい", "きつい"}

// Storage is the persistence surface the aggregator needs. *store.Store
// satisfies it.
type Storage interface {
	RecentEntries(ctx context.Context, userID string, since time.Time, limit int) ([]store.LogEntry, error)
	GetUser(ctx context.Context, userID string) (*store.User, error)
	SaveProfile(ctx context.Context, userID string, profileJSON []byte) error
}

// Aggregator builds behavioral profiles from stored log entries.
type Aggregator struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source. Tests use this for deterministic
// window math.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// NewAggregator creates an Aggregator.
func NewAggregator(storage Storage, logger *zap.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildProfile aggregates the user's recent analyzed entries. Pure read: a
// user with zero qualifying entries gets the canonical empty profile and
// nothing is written.
func (a *Aggregator) BuildProfile(ctx context.Context, userID string) (*Profile, error) {
	now := a.now()
	cutoff := now.Add(-RecentDays * 24 * time.Hour)

	entries, err := a.storage.RecentEntries(ctx, userID, cutoff, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	if len(entries) == 0 {
		return a.emptyProfile(now), nil
	}

	trendCutoff := now.Add(-TrendDays * 24 * time.Hour)

	emotionTrends := aggregateEmotions(entries, trendCutoff)
	topicEmotionMap := aggregateTopicEmotions(entries)
	postingPattern := aggregatePostingPattern(entries, trendCutoff)
	signals := detectSignals(entries, emotionTrends, postingPattern)

	return &Profile{
		UpdatedAt:       now,
		LogCount:        len(entries),
		PeriodDays:      RecentDays,
		EmotionTrends:   emotionTrends,
		TopicEmotionMap: topicEmotionMap,
		PostingPattern:  postingPattern,
		Signals:         signals,
	}, nil
}

// BuildAndSave builds the profile and overwrites the user's stored document.
// A missing user row is tolerated: the profile is still returned, just not
// persisted.
func (a *Aggregator) BuildAndSave(ctx context.Context, userID string) (*Profile, error) {
	profile, err := a.BuildProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	blob, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := a.storage.SaveProfile(ctx, userID, blob); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.logger.Info("user not found, profile not persisted", zap.String("user_id", userID))
			return profile, nil
		}
		return nil, err
	}

	a.logger.Info("profile updated",
		zap.String("user_id", userID),
		zap.Int("log_count", profile.LogCount),
		zap.Int("signals", len(profile.Signals)))
	return profile, nil
}

func (a *Aggregator) emptyProfile(now time.Time) *Profile {
	return &Profile{
		UpdatedAt:  now,
		LogCount:   0,
		PeriodDays: RecentDays,
		EmotionTrends: EmotionTrends{
			TopEmotions: []EmotionCount{},
		},
		TopicEmotionMap: map[string]TopicEmotion{},
		PostingPattern: PostingPattern{
			PeakHours: []int{},
		},
		Signals: []Signal{},
	}
}

// aggregateEmotions counts emotion occurrences and splits them into the
// recent and older buckets for trend detection.
func aggregateEmotions(entries []store.LogEntry, trendCutoff time.Time) EmotionTrends {
	counter := map[string]int{}
	recent := map[string]int{}
	older := map[string]int{}

	for _, e := range entries {
		for _, emotion := range e.Emotions {
			counter[emotion]++
			if !e.CreatedAt.Before(trendCutoff) {
				recent[emotion]++
			} else {
				older[emotion]++
			}
		}
	}

	top := topEmotions(counter, 5)
	total := 0
	for _, c := range counter {
		total += c
	}

	return EmotionTrends{
		TopEmotions:  top,
		TotalEntries: total,
		RecentTrend:  detectEmotionTrend(recent, older),
	}
}

// topEmotions returns the n most frequent emotions, count descending with
// name as the tie-break so output is deterministic.
func topEmotions(counter map[string]int, n int) []EmotionCount {
	result := make([]EmotionCount, 0, len(counter))
	for emotion, count := range counter {
		result = append(result, EmotionCount{Emotion: emotion, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Emotion < result[j].Emotion
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

// detectEmotionTrend compares recent and older emotion distributions.
// Priority order: fatigue, more negative, more positive, stable. All
// threshold comparisons are strict.
func detectEmotionTrend(recent, older map[string]int) string {
	recentTotal := sumCounts(recent)
	olderTotal := sumCounts(older)
	// Empty buckets count as 1 to avoid division errors.
	if recentTotal == 0 {
		recentTotal = 1
	}
	if olderTotal == 0 {
		olderTotal = 1
	}

	recentNeg := float64(sumSet(recent, negativeEmotions)) / float64(recentTotal)
	olderNeg := float64(sumSet(older, negativeEmotions)) / float64(olderTotal)
	recentFatigue := float64(sumSet(recent, fatigueEmotions)) / float64(recentTotal)
	olderFatigue := float64(sumSet(older, fatigueEmotions)) / float64(olderTotal)

	switch {
	case recentFatigue > olderFatigue+0.2:
		return TrendFatigueIncreasing
	case recentNeg > olderNeg+0.15:
		return TrendMoreNegative
	case recentNeg < olderNeg-0.15:
		return TrendMorePositive
	default:
		return TrendStable
	}
}

// aggregateTopicEmotions accumulates a per-topic emotion counter from every
// (topic, emotion) co-occurrence within an entry. Topics with fewer than 2
// total occurrences are dropped as statistically insufficient.
func aggregateTopicEmotions(entries []store.LogEntry) map[string]TopicEmotion {
	topicEmotions := map[string]map[string]int{}

	for _, e := range entries {
		for _, topic := range e.Topics {
			for _, emotion := range e.Emotions {
				if topicEmotions[topic] == nil {
					topicEmotions[topic] = map[string]int{}
				}
				topicEmotions[topic][emotion]++
			}
		}
	}

	result := map[string]TopicEmotion{}
	for topic, counter := range topicEmotions {
		total := sumCounts(counter)
		if total < 2 {
			continue
		}
		result[topic] = TopicEmotion{
			DominantEmotion: dominantEmotion(counter),
			Count:           total,
			Distribution:    counter,
		}
	}
	return result
}

func dominantEmotion(counter map[string]int) string {
	var best string
	bestCount := -1
	for emotion, count := range counter {
		if count > bestCount || (count == bestCount && emotion < best) {
			best = emotion
			bestCount = count
		}
	}
	return best
}

// aggregatePostingPattern derives frequency and hour-of-day statistics.
func aggregatePostingPattern(entries []store.LogEntry, trendCutoff time.Time) PostingPattern {
	dailyCounts := map[string]int{}
	hourCounts := map[int]int{}
	recentCount := 0

	for _, e := range entries {
		created := e.CreatedAt.UTC()
		dailyCounts[created.Format("2006-01-02")]++
		hourCounts[created.Hour()]++
		if !e.CreatedAt.Before(trendCutoff) {
			recentCount++
		}
	}

	totalDays := len(dailyCounts)
	if totalDays == 0 {
		totalDays = 1
	}
	avgPerDay := math.Round(float64(len(entries))/float64(totalDays)*10) / 10

	olderCount := len(entries) - recentCount
	recentAvg := float64(recentCount) / float64(TrendDays)
	olderDays := RecentDays - TrendDays
	if olderDays < 1 {
		olderDays = 1
	}
	olderAvg := float64(olderCount) / float64(olderDays)

	change := FrequencyStable
	// olderAvg must be positive: with no older activity there is no baseline
	// to decrease from.
	if olderAvg > 0 && recentAvg < olderAvg*0.5 {
		change = FrequencyDecreasing
	} else if olderAvg > 0 && recentAvg > olderAvg*1.5 {
		change = FrequencyIncreasing
	}

	return PostingPattern{
		AvgPerDay:       avgPerDay,
		PeakHours:       peakHours(hourCounts, 3),
		FrequencyChange: change,
		TotalLogs:       len(entries),
	}
}

// peakHours returns the n busiest hours, count descending with the hour as
// tie-break.
func peakHours(hourCounts map[int]int, n int) []int {
	type hourCount struct {
		hour  int
		count int
	}
	hours := make([]hourCount, 0, len(hourCounts))
	for h, c := range hourCounts {
		hours = append(hours, hourCount{hour: h, count: c})
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].count != hours[j].count {
			return hours[i].count > hours[j].count
		}
		return hours[i].hour < hours[j].hour
	})
	if len(hours) > n {
		hours = hours[:n]
	}
	result := make([]int, len(hours))
	for i, hc := range hours {
		result[i] = hc.hour
	}
	return result
}

// detectSignals evaluates every signal rule independently; all applicable
// signals are included.
func detectSignals(entries []store.LogEntry, trends EmotionTrends, pattern PostingPattern) []Signal {
	signals := []Signal{}

	// Fatigue repetition across the full window.
	fatigueCount := 0
	for _, e := range entries {
		for _, kw := range fatigueKeywords {
			if strings.Contains(e.Content, kw) {
				fatigueCount++
				break
			}
		}
	}
	if fatigueCount >= 5 {
		signals = append(signals, Signal{
			Type:        SignalFatigueRepetition,
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("疲労に関する投稿が%d回（%d日間）。慢性的な疲労の可能性", fatigueCount, RecentDays),
		})
	}

	switch trends.RecentTrend {
	case TrendFatigueIncreasing:
		signals = append(signals, Signal{
			Type:        SignalStressIncreasing,
			Severity:    SeverityWarning,
			Description: "直近1週間でストレス・焦りの訴えが増加している",
		})
	case TrendMoreNegative:
		signals = append(signals, Signal{
			Type:        SignalNegativityIncreasing,
			Severity:    SeverityInfo,
			Description: "直近1週間でネガティブな感情が増加傾向",
		})
	}

	if pattern.FrequencyChange == FrequencyDecreasing {
		signals = append(signals, Signal{
			Type:        SignalPostingDecrease,
			Severity:    SeverityInfo,
			Description: "投稿頻度が減少傾向。無気力や回避の兆候の可能性",
		})
	}

	// State dominance among the 20 most recent entries (entries arrive
	// newest-first).
	window := entries
	if len(window) > 20 {
		window = window[:20]
	}
	stateCount := 0
	for _, e := range window {
		if e.Intent == "state" {
			stateCount++
		}
	}
	if stateCount >= 10 {
		signals = append(signals, Signal{
			Type:        SignalStateDominant,
			Severity:    SeverityInfo,
			Description: "状態記録が多い。深い思考よりも日々の状態共有がメイン",
		})
	}

	return signals
}

func sumCounts(counter map[string]int) int {
	total := 0
	for _, c := range counter {
		total += c
	}
	return total
}

func sumSet(counter map[string]int, set map[string]bool) int {
	total := 0
	for emotion, c := range counter {
		if set[emotion] {
			total += c
		}
	}
	return total
}

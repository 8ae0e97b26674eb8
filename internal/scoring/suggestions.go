package scoring

import (
	"fmt"
	"sort"

	"vstepprep/internal/vstep"
)

// PerformanceTier buckets an overall percentage into one of five fixed bands.
type PerformanceTier string

const (
	TierNeedsImprovement PerformanceTier = "needs_improvement"
	TierBelowAverage     PerformanceTier = "below_average"
	TierAverage          PerformanceTier = "average"
	TierGood             PerformanceTier = "good"
	TierExcellent        PerformanceTier = "excellent"
)

// TierFor maps an overall percentage to its performance tier.
func TierFor(percentage int) PerformanceTier {
	switch {
	case percentage >= 90:
		return TierExcellent
	case percentage >= 80:
		return TierGood
	case percentage >= 70:
		return TierAverage
	case percentage >= 60:
		return TierBelowAverage
	default:
		return TierNeedsImprovement
	}
}

// tierHeadlines holds the Vietnamese headline suggestion for each tier.
var tierHeadlines = map[PerformanceTier]string{
	TierExcellent:        "Xuất sắc! Bạn đã nắm vững kỹ năng này, hãy duy trì phong độ.",
	TierGood:             "Kết quả tốt! Hãy luyện thêm để đạt mức xuất sắc.",
	TierAverage:          "Kết quả khá ổn. Hãy ôn lại các câu sai để cải thiện điểm số.",
	TierBelowAverage:     "Kết quả dưới mức trung bình. Bạn nên dành thêm thời gian ôn tập.",
	TierNeedsImprovement: "Bạn cần cải thiện nhiều. Hãy ôn lại kiến thức cơ bản và luyện tập đều đặn.",
}

const (
	weakSectionThreshold = 60
	maxSectionTips       = 2
	nextLevelThreshold   = 80
)

// Suggestions turns a score rollup into student-facing feedback: one headline
// for the overall tier, up to two targeted tips for the weakest sections
// (below 60%, weakest first), and a next-level nudge when the overall result
// is 80% or better and a higher level exists.
func Suggestions(result SessionScoreResult, level vstep.Level) []string {
	out := []string{tierHeadlines[TierFor(result.Percentage)]}

	weak := make([]SectionResult, 0, len(result.Sections))
	for _, sec := range result.Sections {
		if sec.Percentage < weakSectionThreshold {
			weak = append(weak, sec)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].Percentage < weak[j].Percentage
	})
	if len(weak) > maxSectionTips {
		weak = weak[:maxSectionTips]
	}
	for _, sec := range weak {
		out = append(out, fmt.Sprintf(
			"Phần %q chỉ đạt %d%%. Hãy luyện tập thêm dạng bài này.",
			sec.Section, sec.Percentage))
	}

	if result.Percentage >= nextLevelThreshold {
		if next, ok := vstep.NextLevel(level); ok {
			out = append(out, fmt.Sprintf(
				"Bạn đã sẵn sàng thử sức với trình độ %s.", next))
		}
	}

	return out
}

package mjjbox

import (
	"regexp"
	"strconv"
)

// Stats are the numeric signals a result page happens to expose. Every
// field is optional; partial results are valid and expected.
type Stats struct {
	TotalCheckins *int
	Consecutive   *int
	TotalPoints   *int
	Gained        *int
}

func (s Stats) Empty() bool {
	return s.TotalCheckins == nil && s.Consecutive == nil &&
		s.TotalPoints == nil && s.Gained == nil
}

// ordered pattern lists per statistic, bilingual. first parseable
// capture wins for a kind.
var (
	totalCheckinPatterns = []*regexp.Regexp{
		regexp.MustCompile(`已签到\s*[:：]?\s*(\d+)`),
		regexp.MustCompile(`累计签到\s*[:：]?\s*(\d+)`),
		regexp.MustCompile(`(?i)total\s*check-?ins?\s*[:：]?\s*(\d+)`),
	}
	consecutivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`连续签到\s*[:：]?\s*(\d+)\s*天`),
		regexp.MustCompile(`连续(?:签到)?\s*(\d+)\s*天`),
		regexp.MustCompile(`(?i)consecutive\s*days?\s*[:：]?\s*(\d+)`),
	}
	totalPointPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:积分|点数|score|points?)\s*[:：]?\s*(\d+)`),
		regexp.MustCompile(`总积分\s*[:：]?\s*(\d+)`),
		regexp.MustCompile(`(?i)balance\s*[:：]?\s*(\d+)`),
	}
	gainedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`本次(?:签到)?(?:获得|奖励)(?:了)?\s*(\d+)\s*(?:积分|分|点)`),
		regexp.MustCompile(`(?i)获得(?:了)?\s*(\d+)\s*(?:积分|分|点|points?)`),
		regexp.MustCompile(`(?i)you gained\s*(\d+)\s*points?`),
	}

	// some sites only write "签到 123" or "签到:123"; used as a last
	// resort for the total when nothing structured matched.
	looseCheckinPattern = regexp.MustCompile(`签到[^\d]{0,4}(\d+)`)
)

func firstIntMatch(text string, patterns []*regexp.Regexp) *int {
	for _, pattern := range patterns {
		groups := pattern.FindStringSubmatch(text)
		if len(groups) < 2 {
			continue
		}
		val, err := strconv.Atoi(groups[1])
		if err != nil {
			continue
		}
		return &val
	}
	return nil
}

// MineStats extracts usage statistics from free-form result text. It is
// total and side-effect-free: any input, including the empty string,
// yields a Stats value and an unmatched kind simply stays nil.
func MineStats(text string) Stats {
	out := Stats{
		TotalCheckins: firstIntMatch(text, totalCheckinPatterns),
		Consecutive:   firstIntMatch(text, consecutivePatterns),
		TotalPoints:   firstIntMatch(text, totalPointPatterns),
		Gained:        firstIntMatch(text, gainedPatterns),
	}
	if out.TotalCheckins == nil {
		out.TotalCheckins = firstIntMatch(text, []*regexp.Regexp{looseCheckinPattern})
	}
	return out
}

// MergeStats combines two partial results: the first non-nil value wins
// per field, with primary (the check-in response) beating fallback (a
// profile page probe).
func MergeStats(primary, fallback Stats) Stats {
	pick := func(a, b *int) *int {
		if a != nil {
			return a
		}
		return b
	}
	return Stats{
		TotalCheckins: pick(primary.TotalCheckins, fallback.TotalCheckins),
		Consecutive:   pick(primary.Consecutive, fallback.Consecutive),
		TotalPoints:   pick(primary.TotalPoints, fallback.TotalPoints),
		Gained:        pick(primary.Gained, fallback.Gained),
	}
}

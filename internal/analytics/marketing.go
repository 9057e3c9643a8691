package analytics

import "regexp"

const (
	marketingMinPatterns   = 2
	marketingMinEngagement = 20
	marketingTags          = 5
	marketingSnippet       = 300
)

type marketingPattern struct {
	tag string
	re  *regexp.Regexp
}

var marketingPatterns = func() []marketingPattern {
	src := []string{
		`swipe`, `script`, `objection`, `elevator pitch`, `value proposition`,
		`call to action`, `cta`, `testimonial`, `case study`, `before.{1,10}after`,
		`referral`, `word of mouth`, `review`, `google review`, `social proof`,
		`offer`, `discount`, `promo`, `free consult`, `discovery call`,
		`email sequence`, `funnel`, `landing page`, `lead magnet`,
		`pain point`, `transformation`, `outcome`, `result`,
	}
	out := make([]marketingPattern, len(src))
	for i, p := range src {
		out[i] = marketingPattern{tag: p, re: regexp.MustCompile("(?i)" + p)}
	}
	return out
}()

// MarketingSignals returns the patterns present in text, in pattern order.
func MarketingSignals(text string) []string {
	var tags []string
	for _, p := range marketingPatterns {
		if p.re.MatchString(text) {
			tags = append(tags, p.tag)
		}
	}
	return tags
}

// IsMarketingCandidate applies the swipe-file threshold.
func IsMarketingCandidate(patterns, engagement int) bool {
	return patterns >= marketingMinPatterns || engagement >= marketingMinEngagement
}

// MarketingScore ranks swipe-file candidates.
func MarketingScore(patterns, engagement int) float64 {
	return float64(patterns) + float64(engagement)*0.1
}

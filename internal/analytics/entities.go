package analytics

import (
	"regexp"
	"strings"
)

// Entity categories.
const (
	CategoryCredential  = "credential"
	CategoryCEUProvider = "ceu_provider"
	CategorySoftware    = "software"
)

// credentialPatterns run against the upper-cased text.
var credentialPatterns = compileAll("", []string{
	`\bOCS\b`, `\bSCS\b`, `\bNCS\b`, `\bCCS\b`, `\bGCS\b`, `\bWCS\b`, `\bPCS\b`,
	`\bFAAOMPT\b`, `\bCOPT\b`, `\bCMPT\b`, `\bCIMT\b`, `\bDAAPT\b`,
	`\bDPT\b`, `\bMPT\b`, `\bPT\b`, `\bPTA\b`, `\bATC\b`, `\bCSCS\b`,
	`\bDN\b`, `\bIDN\b`, `\bFDN\b`,
})

var ceuProviderPatterns = compileAll("(?i)", []string{
	`NAIOMT`, `APTA`, `Herman\s*&?\s*Wallace`, `EIM`, `Institute of Physical Art`,
	`Maitland`, `Mulligan`, `McKenzie\s+Institute`, `MDT`, `OPTP`,
	`AAOMPT`, `Functional Movement`, `FMS`, `SFMA`, `Dry\s*Needling`,
	`Myopain`, `Integrative`, `Evidence in Motion`, `UW\s+Sports`,
})

var softwarePatterns = compileAll("(?i)", []string{
	`Jane\s*App`, `Jane\s+Health`, `Practice\s*Better`, `Hint\s*Health`, `Healthie`,
	`Simple\s*Practice`, `IntakeQ`, `WebPT`, `Clinicient`, `Kareo`,
	`Prompt`, `BetterPT`, `Heno`, `OptimisPT`, `TheraOffice`,
	`Stripe`, `Square`, `PayPal`, `Venmo`, `QuickBooks`, `Wave`,
	`Calendly`, `Acuity`, `Google\s*Workspace`, `Zoom`, `Notion`,
})

func compileAll(flags string, patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(flags + p)
	}
	return out
}

// EntityMention is a credential, course provider or software product named in text.
type EntityMention struct {
	Entity   string
	Category string
}

// ExtractEntities lists every mention, pattern by pattern, credentials first.
func ExtractEntities(text string) []EntityMention {
	if text == "" {
		return nil
	}
	var out []EntityMention
	upper := strings.ToUpper(text)
	for _, re := range credentialPatterns {
		for _, m := range re.FindAllString(upper, -1) {
			out = append(out, EntityMention{Entity: m, Category: CategoryCredential})
		}
	}
	for _, group := range []struct {
		category string
		patterns []*regexp.Regexp
	}{
		{CategoryCEUProvider, ceuProviderPatterns},
		{CategorySoftware, softwarePatterns},
	} {
		for _, re := range group.patterns {
			for _, m := range re.FindAllString(text, -1) {
				out = append(out, EntityMention{Entity: m, Category: group.category})
			}
		}
	}
	return out
}

package usecase

import (
	"regexp"
	"strings"
)

// Compiled patterns for size extraction. hyphenNumberPattern is shared by the
// reference-code rule and the trailing-number description rule: a 1-2 digit
// number immediately preceded by a hyphen and followed by whitespace or
// end-of-string.
var (
	hyphenNumberPattern   = regexp.MustCompile(`-(\d{1,2})(?:\s|$)`)
	brandHyphenPattern    = regexp.MustCompile(`(?:FEMININA|MASCULINA|INFANTIL)-(\d+)-`)
	standardTokenPattern  = regexp.MustCompile(`\b(XXG|XG|GG|PP|P|M|G)\b`)
	shoeRangePattern      = regexp.MustCompile(`\b(\d{2}/\d{2})\b`)
	explicitMarkerPattern = regexp.MustCompile(`\bTAM(?:ANHO)?[\s.:\-]*([A-Z0-9]{1,3})\b`)
	categoryWordPattern   = regexp.MustCompile(`\b(INFANTIL|ADULTO|JUVENIL)\b`)
	numericSizePattern    = regexp.MustCompile(`^\d{1,2}$`)
	rangeSizePattern      = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

// standardSizes is the closed set of clothing-size tokens.
var standardSizes = map[string]bool{
	"PP": true, "P": true, "M": true, "G": true,
	"GG": true, "XG": true, "XXG": true,
}

// categorySizes are the category words accepted as sizes.
var categorySizes = map[string]bool{
	"INFANTIL": true, "ADULTO": true, "JUVENIL": true,
}

// sizeRule is one step of the ordered extraction chain: extract proposes a
// candidate, validate decides whether the (normalized) candidate is accepted.
// Rules run in declaration order; the first accepted candidate wins.
type sizeRule struct {
	name     string
	extract  func(text string) (string, bool)
	validate func(candidate string) bool
}

// descriptionRules is the fixed rule order for free-text descriptions. The
// order encodes precedence and must not be rearranged.
var descriptionRules = []sizeRule{
	{
		// Number between hyphens right after a gender/age word, the
		// convention used by one supplier ("MASCULINA-12-").
		name: "brand-hyphen",
		extract: func(text string) (string, bool) {
			return firstGroup(brandHyphenPattern, text)
		},
		validate: isValidSize,
	},
	{
		// Descriptions carrying both the infant and the common marker
		// always resolve to INFANTIL, whatever else matches.
		name: "infant-common",
		extract: func(text string) (string, bool) {
			if strings.Contains(text, "INFANTIL") && strings.Contains(text, "COMUM") {
				return "INFANTIL", true
			}
			return "", false
		},
		validate: func(string) bool { return true },
	},
	{
		name: "standard-token",
		extract: func(text string) (string, bool) {
			return firstGroup(standardTokenPattern, text)
		},
		validate: isValidSize,
	},
	{
		name: "shoe-range",
		extract: func(text string) (string, bool) {
			return firstGroup(shoeRangePattern, text)
		},
		validate: isValidSize,
	},
	{
		name: "explicit-marker",
		extract: func(text string) (string, bool) {
			return firstGroup(explicitMarkerPattern, text)
		},
		validate: isValidSize,
	},
	{
		name: "category-word",
		extract: func(text string) (string, bool) {
			return firstGroup(categoryWordPattern, text)
		},
		validate: isValidSize,
	},
	{
		name: "trailing-hyphen-number",
		extract: func(text string) (string, bool) {
			return firstGroup(hyphenNumberPattern, text)
		},
		validate: isValidSize,
	},
}

// SizeRuleTrace records one attempted rule for the diagnostic extractor.
type SizeRuleTrace struct {
	Rule       string `json:"rule"`
	Matched    bool   `json:"matched"`
	Candidate  string `json:"candidate,omitempty"`
	Normalized string `json:"normalized,omitempty"`
	Accepted   bool   `json:"accepted"`
	Reason     string `json:"reason"`
}

// ExtractSize infers a garment size from a reference code and a free-text
// description. The reference code is tried first; when it yields no valid
// candidate the description rule chain decides. Empty string means no size.
func ExtractSize(reference, description string) string {
	if size := ExtractSizeFromReference(reference); size != "" {
		return size
	}
	return ExtractSizeFromDescription(description)
}

// ExtractSizeFromReference searches a reference code for a hyphen-number
// token ("REF-2037-07" yields "07"). Returns empty when nothing validates.
func ExtractSizeFromReference(reference string) string {
	text := strings.ToUpper(strings.TrimSpace(reference))
	if text == "" {
		return ""
	}

	candidate, ok := firstGroup(hyphenNumberPattern, text)
	if !ok {
		return ""
	}

	normalized := normalizeSizeToken(candidate)
	if !isValidSize(normalized) {
		return ""
	}
	return normalized
}

// ExtractSizeFromDescription runs the ordered rule chain over a free-text
// description and returns the first valid candidate, or empty string.
func ExtractSizeFromDescription(description string) string {
	size, _ := runDescriptionRules(description, false)
	return size
}

// ExtractSizeFromDescriptionTrace is the diagnostic variant: it returns the
// resolved size plus the ordered trace of every rule attempted. The trace is
// for tooling only and never feeds pricing.
func ExtractSizeFromDescriptionTrace(description string) (string, []SizeRuleTrace) {
	return runDescriptionRules(description, true)
}

func runDescriptionRules(description string, traced bool) (string, []SizeRuleTrace) {
	text := strings.ToUpper(strings.TrimSpace(description))

	var trace []SizeRuleTrace
	if traced {
		trace = make([]SizeRuleTrace, 0, len(descriptionRules))
	}

	for _, rule := range descriptionRules {
		entry := SizeRuleTrace{Rule: rule.name}

		candidate, ok := rule.extract(text)
		if !ok {
			entry.Reason = "pattern did not match"
			if traced {
				trace = append(trace, entry)
			}
			continue
		}

		entry.Matched = true
		entry.Candidate = candidate
		entry.Normalized = normalizeSizeToken(candidate)

		if !rule.validate(entry.Normalized) {
			entry.Reason = "candidate failed size validation"
			if traced {
				trace = append(trace, entry)
			}
			continue
		}

		entry.Accepted = true
		entry.Reason = "first valid candidate in rule order"
		if traced {
			trace = append(trace, entry)
		}
		return entry.Normalized, trace
	}

	return "", trace
}

// firstGroup returns the first capture group of the leftmost match.
func firstGroup(pattern *regexp.Regexp, text string) (string, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// normalizeSizeToken expands the known long-form size words to their short
// tokens; anything else passes through upper-cased and trimmed.
func normalizeSizeToken(candidate string) string {
	token := strings.ToUpper(strings.TrimSpace(candidate))
	switch token {
	case "EXTRA GRANDE":
		return "XG"
	case "EXTRA PEQUENO":
		return "PP"
	case "PEQUENO":
		return "P"
	case "MEDIO", "MÉDIO":
		return "M"
	case "GRANDE":
		return "G"
	}
	return token
}

// isValidSize accepts standard clothing tokens, category words, 1-2 digit
// numbers and two-group slash ranges. Everything else is discarded.
func isValidSize(candidate string) bool {
	if candidate == "" {
		return false
	}
	if standardSizes[candidate] || categorySizes[candidate] {
		return true
	}
	if numericSizePattern.MatchString(candidate) {
		return true
	}
	return rangeSizePattern.MatchString(candidate)
}

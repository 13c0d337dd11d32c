package documents

import (
	"regexp"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// FraudKeywords mark specimen or placeholder documents
var FraudKeywords = []string{
	"FAKE", "SAMPLE", "DEMO", "TEST", "DUMMY", "TEMPLATE",
	"DRAFT", "COPY", "SPECIMEN", "EXAMPLE", "NOT VALID", "FOR DISPLAY ONLY",
}

// securityFeatureAliases maps each reported feature to the phrases that reveal it
var securityFeatureAliases = []struct {
	feature string
	phrases []string
}{
	{"seal", []string{"seal"}},
	{"stamp", []string{"stamp"}},
	{"signature", []string{"signature", "signed"}},
	{"hologram", []string{"hologram"}},
	{"barcode", []string{"barcode", "bar code"}},
	{"QR code", []string{"qr code", "qrcode"}},
	{"serial number", []string{"serial number", "serial no"}},
}

// SecurityFeatureNames lists the canonical feature names in report order
func SecurityFeatureNames() []string {
	names := make([]string, len(securityFeatureAliases))
	for i, a := range securityFeatureAliases {
		names[i] = a.feature
	}
	return names
}

// phraseMatcher wraps an Aho-Corasick automaton. Match mutates the automaton's
// bookkeeping so calls are serialised.
type phraseMatcher struct {
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

func newPhraseMatcher(phrases []string) *phraseMatcher {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return &phraseMatcher{matcher: ahocorasick.NewStringMatcher(lowered)}
}

// hits returns the indices of the phrases found in text, case-insensitively
func (m *phraseMatcher) hits(text string) map[int]bool {
	m.mu.Lock()
	found := m.matcher.Match([]byte(strings.ToLower(text)))
	m.mu.Unlock()

	out := make(map[int]bool, len(found))
	for _, i := range found {
		out[i] = true
	}
	return out
}

var (
	fraudMatcher = newPhraseMatcher(FraudKeywords)
	fraudWordRes = compileWordPatterns(FraudKeywords)

	featurePhrases, featureOwners = flattenFeatures()
	featureMatcher                = newPhraseMatcher(featurePhrases)
)

func compileWordPatterns(keywords []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw))
	}
	return res
}

func flattenFeatures() ([]string, []int) {
	var phrases []string
	var owners []int
	for i, a := range securityFeatureAliases {
		for _, p := range a.phrases {
			phrases = append(phrases, p)
			owners = append(owners, i)
		}
	}
	return phrases, owners
}

// ScanFraudKeywords returns the fraud keywords that start a word in text.
// Watermarks run into neighbouring characters ("SAMPLECOPY", "SAMPLE123"), so
// only the leading boundary is required; "ATTESTED" still does not count as "TEST".
func ScanFraudKeywords(text string) []string {
	if text == "" {
		return nil
	}

	candidates := fraudMatcher.hits(text)
	var found []string
	for i, kw := range FraudKeywords {
		if candidates[i] && fraudWordRes[i].MatchString(text) {
			found = append(found, kw)
		}
	}
	return found
}

// ScanSecurityFeatures returns the canonical names of security features mentioned in text
func ScanSecurityFeatures(text string) []string {
	if text == "" {
		return nil
	}

	hits := featureMatcher.hits(text)
	seen := make(map[int]bool)
	for i := range hits {
		seen[featureOwners[i]] = true
	}

	var found []string
	for i, a := range securityFeatureAliases {
		if seen[i] {
			found = append(found, a.feature)
		}
	}
	return found
}

// mergeUnique appends the entries of extra not already in base, comparing case-insensitively
func mergeUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			key := strings.ToLower(s)
			if s == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

package extract

import (
	"strings"

	"github.com/apiscope/apiscope/internal/patterns"
)

// idiomOrigins maps a call idiom to the candidate origin it produces.
var idiomOrigins = map[patterns.CallIdiom]Origin{
	patterns.IdiomFetch:      OriginScriptFetch,
	patterns.IdiomAxios:      OriginScriptAxios,
	patterns.IdiomJQueryAjax: OriginScriptAjax,
	patterns.IdiomJQueryGet:  OriginScriptAjax,
	patterns.IdiomJQueryPost: OriginScriptAjax,
	patterns.IdiomXHR:        OriginScriptXHR,
}

// ScanScriptCalls scans raw script text with the fixed idiom set and
// returns one script-call candidate per match, in pattern order.
// Duplicate (idiom, URL) pairs are retained; deduplication, if wanted,
// belongs to the aggregator.
func ScanScriptCalls(script string) []Candidate {
	calls := make([]Candidate, 0)

	for _, cp := range patterns.CallPatterns {
		for _, match := range cp.Regex.FindAllStringSubmatch(script, -1) {
			if len(match) <= cp.URLGroup {
				continue
			}
			method := cp.Method
			if cp.MethodGroup > 0 && len(match) > cp.MethodGroup {
				method = strings.ToUpper(match[cp.MethodGroup])
			}
			if method == "" {
				method = "GET"
			}
			calls = append(calls, Candidate{
				Kind:       KindScriptCall,
				URL:        match[cp.URLGroup],
				Method:     method,
				RawContext: string(cp.Idiom),
				Origin:     idiomOrigins[cp.Idiom],
			})
		}
	}

	return calls
}

// ScanSecrets scans script text for API-key-like literals. Returned
// values are masked: the first 10 characters plus an ellipsis, or the
// whole value when it is 10 characters or shorter.
func ScanSecrets(script string) []SecretMatch {
	secrets := make([]SecretMatch, 0)

	for _, sp := range patterns.SecretPatterns {
		for _, match := range sp.Regex.FindAllStringSubmatch(script, -1) {
			if len(match) < 2 {
				continue
			}
			secrets = append(secrets, SecretMatch{
				Type:        sp.Type,
				MaskedValue: MaskSecret(match[1]),
				Description: "API key found in JavaScript",
			})
		}
	}

	return secrets
}

// MaskSecret truncates a secret to its first 10 characters plus a
// literal ellipsis. Values that short are carried whole.
func MaskSecret(value string) string {
	if len(value) <= 10 {
		return value
	}
	return value[:10] + "..."
}

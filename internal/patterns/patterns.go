// Package patterns holds the static pattern registry used to recognize
// endpoint URLs, client-side call idioms, and API-key-like tokens. All
// tables are read-only after package initialization.
package patterns

import (
	"regexp"
	"strings"
)

// Category classifies what kind of API surface a URL belongs to.
type Category string

const (
	CategoryREST         Category = "rest-api"
	CategoryGraphQL      Category = "graphql"
	CategoryOAuth        Category = "oauth"
	CategoryWebhook      Category = "webhook"
	CategoryUnclassified Category = "unclassified"
)

// URLRule is one weighted URL heuristic. Rules are independent and
// additive: a URL matching several rules accumulates several weights. A
// rule with several substrings counts its weight once no matter how
// many of them appear.
type URLRule struct {
	Substrings []string
	Weight     float64
	Category   Category
}

// Matches reports whether lowerURL contains any of the rule's substrings.
func (r URLRule) Matches(lowerURL string) bool {
	for _, s := range r.Substrings {
		if strings.Contains(lowerURL, s) {
			return true
		}
	}
	return false
}

// ContentTypeRule is one weighted content-type heuristic.
type ContentTypeRule struct {
	Substring string
	Weight    float64
}

// URLRules is the weighted URL table evaluated by the confidence scorer.
// Adding a heuristic is a data change here, not a code change there.
var URLRules = []URLRule{
	{Substrings: []string{"/api/"}, Weight: 0.4, Category: CategoryREST},
	{Substrings: []string{"/rest/"}, Weight: 0.3, Category: CategoryREST},
	{Substrings: []string{"/v1/", "/v2/"}, Weight: 0.2, Category: CategoryREST},
}

// ContentTypeRules is the weighted content-type table.
var ContentTypeRules = []ContentTypeRule{
	{Substring: "application/json", Weight: 0.3},
	{Substring: "application/xml", Weight: 0.2},
}

// CategoryRule maps a URL substring to a category. Checked in order,
// first match wins.
type CategoryRule struct {
	Substring string
	Category  Category
}

// CategoryRules is the ordered category table. GraphQL outranks OAuth
// outranks webhook; REST is decided by URLRules afterwards.
var CategoryRules = []CategoryRule{
	{Substring: "graphql", Category: CategoryGraphQL},
	{Substring: "oauth", Category: CategoryOAuth},
	{Substring: "webhook", Category: CategoryWebhook},
	{Substring: "callback", Category: CategoryWebhook},
}

// EndpointHrefPatterns match anchor hrefs that look like API endpoints.
var EndpointHrefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/api/`),
	regexp.MustCompile(`(?i)/rest/`),
	regexp.MustCompile(`(?i)/v\d+/`),
	regexp.MustCompile(`(?i)/graphql`),
	regexp.MustCompile(`(?i)/swagger`),
	regexp.MustCompile(`(?i)/openapi`),
}

// MatchesEndpointHref reports whether an href matches any endpoint pattern.
func MatchesEndpointHref(href string) bool {
	for _, re := range EndpointHrefPatterns {
		if re.MatchString(href) {
			return true
		}
	}
	return false
}

// MatchesRESTURL reports whether a URL matches any REST rule from the
// weighted table. Used by the aggregator's REST finding check.
func MatchesRESTURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, rule := range URLRules {
		if rule.Category == CategoryREST && rule.Matches(lower) {
			return true
		}
	}
	return false
}

// CallIdiom names a client-side API call style.
type CallIdiom string

const (
	IdiomFetch      CallIdiom = "fetch"
	IdiomAxios      CallIdiom = "axios"
	IdiomJQueryAjax CallIdiom = "jquery_ajax"
	IdiomJQueryGet  CallIdiom = "jquery_get"
	IdiomJQueryPost CallIdiom = "jquery_post"
	IdiomXHR        CallIdiom = "xmlhttprequest"
)

// CallPattern recognizes one call idiom in raw script text. URLGroup and
// MethodGroup index into the regexp submatches; MethodGroup 0 means the
// idiom implies the method given in Method.
type CallPattern struct {
	Idiom       CallIdiom
	Regex       *regexp.Regexp
	URLGroup    int
	MethodGroup int
	Method      string
}

// CallPatterns is the ordered idiom set scanned by the script extractor.
var CallPatterns = []CallPattern{
	{
		Idiom:    IdiomFetch,
		Regex:    regexp.MustCompile(`(?i)fetch\s*\(\s*["']([^"']+)["']`),
		URLGroup: 1,
		Method:   "GET",
	},
	{
		Idiom:       IdiomAxios,
		Regex:       regexp.MustCompile(`(?i)axios\.(get|post|put|delete|patch)\s*\(\s*["']([^"']+)["']`),
		URLGroup:    2,
		MethodGroup: 1,
	},
	{
		Idiom:    IdiomJQueryAjax,
		Regex:    regexp.MustCompile(`(?i)\.ajax\s*\(\s*\{[^}]*url\s*:\s*["']([^"']+)["']`),
		URLGroup: 1,
		Method:   "GET",
	},
	{
		Idiom:    IdiomJQueryGet,
		Regex:    regexp.MustCompile(`(?i)\$\.get\s*\(\s*["']([^"']+)["']`),
		URLGroup: 1,
		Method:   "GET",
	},
	{
		Idiom:    IdiomJQueryPost,
		Regex:    regexp.MustCompile(`(?i)\$\.post\s*\(\s*["']([^"']+)["']`),
		URLGroup: 1,
		Method:   "POST",
	},
	{
		Idiom:       IdiomXHR,
		Regex:       regexp.MustCompile(`(?i)XMLHttpRequest[^}]*?\.open\s*\(\s*["'](\w+)["']\s*,\s*["']([^"']+)["']`),
		URLGroup:    2,
		MethodGroup: 1,
	},
}

// SecretPattern recognizes one API-key-like literal.
type SecretPattern struct {
	Type  string
	Regex *regexp.Regexp
}

// SecretPatterns is the key/token literal set. The value submatch is
// always group 1; matched values must be masked before leaving the
// extractor.
var SecretPatterns = []SecretPattern{
	{Type: "api_key", Regex: regexp.MustCompile(`(?i)api[_-]?key["']?\s*[:=]\s*["']([^"']+)["']`)},
	{Type: "token", Regex: regexp.MustCompile(`(?i)token["']?\s*[:=]\s*["']([^"']+)["']`)},
	{Type: "bearer", Regex: regexp.MustCompile(`(?i)bearer["']?\s*[:=]\s*["']([^"']+)["']`)},
}

// Field vocabularies for auth-form classification. Matched
// case-insensitively against the field's type, name, and id together.
var (
	UsernameIndicators = []string{"username", "user", "email", "login", "account", "id"}
	SubmitIndicators   = []string{"submit", "login", "signin", "auth", "enter"}
)

// SensitiveURLIndicators flag endpoint URLs that carry secret-like path
// or query segments.
var SensitiveURLIndicators = []string{"password", "token", "key", "secret"}

// AccessIndicators are page-text hints that content sits behind a login.
var AccessIndicators = []string{
	"password", "login", "signin", "authenticate", "auth",
	"secure", "protected", "restricted", "members-only", "private",
}

// AuthTexts are literal phrases that indicate an authentication gate.
var AuthTexts = []string{
	"please log in",
	"sign in required",
	"authentication required",
	"login to access",
	"members only",
	"private area",
	"restricted access",
}

// URL normalization for grouping: numeric segments become {id}, long hex
// segments {hash}, long alphanumeric segments {token}.
var (
	idSegment    = regexp.MustCompile(`/\d+`)
	hashSegment  = regexp.MustCompile(`/[a-f0-9]{8,}`)
	tokenSegment = regexp.MustCompile(`/[a-zA-Z0-9]{20,}`)
)

// NormalizeURLPattern collapses variable path segments so that
// /api/users/42 and /api/users/43 group as one endpoint pattern.
// Idempotent: normalizing a normalized pattern is a no-op.
func NormalizeURLPattern(rawURL string) string {
	pattern := idSegment.ReplaceAllString(rawURL, "/{id}")
	pattern = hashSegment.ReplaceAllString(pattern, "/{hash}")
	pattern = tokenSegment.ReplaceAllString(pattern, "/{token}")
	return pattern
}

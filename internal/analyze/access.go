package analyze

import (
	"fmt"
	"strings"

	"github.com/apiscope/apiscope/internal/patterns"
	"github.com/apiscope/apiscope/internal/score"
)

// PageLink is a plain anchor from the page, used for auth-link checks.
// The markup extractor only keeps API-looking anchors, so access
// analysis receives the full link list separately.
type PageLink struct {
	URL  string
	Text string
}

// AccessAnalysis reports whether a page sits behind an authentication
// gate, and how to get through it.
type AccessAnalysis struct {
	URL               string           `json:"url"`
	FinalURL          string           `json:"final_url,omitempty"`
	Accessible        bool             `json:"accessible"`
	StatusCode        int              `json:"status_code,omitempty"`
	Redirected        bool             `json:"redirected"`
	PasswordProtected bool             `json:"password_protected"`
	AuthRequired      bool             `json:"auth_required"`
	AuthForms         []score.AuthForm `json:"auth_methods,omitempty"`
	Indicators        []string         `json:"indicators,omitempty"`
	Recommendations   []string         `json:"recommendations"`
}

// LoginSuggestion is a starting login configuration derived from the
// best-scoring authentication form.
type LoginSuggestion struct {
	LoginURL      string   `json:"login_url"`
	UsernameField string   `json:"username_field"`
	PasswordField string   `json:"password_field"`
	SubmitButton  string   `json:"submit_button"`
	Notes         []string `json:"notes,omitempty"`
}

// AnalyzeAccess classifies a fetched page's authentication posture from
// its status code, body text, links, and detected auth forms.
func AnalyzeAccess(target, finalURL string, status int, bodyText string, links []PageLink, authForms []score.AuthForm) *AccessAnalysis {
	a := &AccessAnalysis{
		URL:             target,
		FinalURL:        finalURL,
		Accessible:      true,
		StatusCode:      status,
		Redirected:      finalURL != "" && finalURL != target,
		AuthForms:       authForms,
		Indicators:      make([]string, 0),
		Recommendations: make([]string, 0),
	}

	switch {
	case status == 401:
		a.PasswordProtected = true
		a.AuthRequired = true
		a.Recommendations = append(a.Recommendations, "Site requires authentication (HTTP 401)")
	case status == 403:
		a.PasswordProtected = true
		a.AuthRequired = true
		a.Recommendations = append(a.Recommendations, "Access forbidden - authentication required (HTTP 403)")
	case status >= 200 && status < 300:
		if len(authForms) > 0 {
			a.AuthRequired = true
			a.Recommendations = append(a.Recommendations, "Authentication forms detected on the page")
		}
		a.Indicators = contentIndicators(bodyText, links)
		if len(a.Indicators) > 0 {
			a.PasswordProtected = true
			a.AuthRequired = true
		}
	}

	if a.AuthRequired {
		a.Recommendations = append(a.Recommendations,
			"Use the gated extraction method for this site",
			"Prepare your login credentials before extraction",
			"Consider using browser automation for complex authentication flows",
		)
	} else {
		a.Recommendations = append(a.Recommendations, "Site appears to be publicly accessible")
	}

	return a
}

// contentIndicators collects authentication hints from page text and
// login-looking links.
func contentIndicators(bodyText string, links []PageLink) []string {
	indicators := make([]string, 0)
	lower := strings.ToLower(bodyText)

	for _, ind := range patterns.AccessIndicators {
		if strings.Contains(lower, ind) {
			indicators = append(indicators, fmt.Sprintf("Password protection indicator found: %q", ind))
		}
	}

	for _, text := range patterns.AuthTexts {
		if strings.Contains(lower, text) {
			indicators = append(indicators, fmt.Sprintf("Authentication text found: %q", text))
		}
	}

	for _, link := range links {
		href := strings.ToLower(link.URL)
		label := strings.ToLower(link.Text)
		for _, ind := range []string{"login", "signin", "auth"} {
			if strings.Contains(href, ind) || strings.Contains(label, ind) {
				indicators = append(indicators, fmt.Sprintf("Authentication link found: %s", strings.TrimSpace(link.Text)))
				break
			}
		}
	}

	return indicators
}

// SuggestLoginConfig derives a login configuration from the analysis.
// Returns nil when the page needs no authentication or offers no usable
// form.
func SuggestLoginConfig(a *AccessAnalysis) *LoginSuggestion {
	if a == nil || !a.AuthRequired {
		return nil
	}

	s := &LoginSuggestion{
		LoginURL: a.URL,
		Notes:    make([]string, 0),
	}
	if a.FinalURL != "" {
		s.LoginURL = a.FinalURL
	}

	if best, ok := score.BestAuthForm(a.AuthForms); ok {
		for _, field := range best.Fields {
			switch field.Role {
			case score.RolePassword:
				if s.PasswordField == "" {
					s.PasswordField = field.Name
				}
			case score.RoleUsername:
				if s.UsernameField == "" {
					s.UsernameField = field.Name
				}
			case score.RoleSubmit:
				if s.SubmitButton == "" && field.Name != "" {
					s.SubmitButton = fmt.Sprintf("input[name='%s']", field.Name)
				}
			}
		}
	}
	if s.SubmitButton == "" {
		s.SubmitButton = "input[type='submit'], button[type='submit']"
	}

	switch a.StatusCode {
	case 401:
		s.Notes = append(s.Notes, "HTTP 401 response indicates authentication required")
	case 403:
		s.Notes = append(s.Notes, "HTTP 403 response indicates access forbidden")
	}
	if a.Redirected {
		s.Notes = append(s.Notes, "URL was redirected - use final URL for authentication")
	}

	return s
}

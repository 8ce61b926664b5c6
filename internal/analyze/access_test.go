package analyze

import (
	"strings"
	"testing"

	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/score"
)

// ============================================================
// Access classification
// ============================================================

func TestAnalyzeAccessUnauthorized(t *testing.T) {
	a := AnalyzeAccess("https://example.com/", "", 401, "", nil, nil)

	if !a.PasswordProtected || !a.AuthRequired {
		t.Errorf("401 must flag protection, got %+v", a)
	}
	if a.Recommendations[0] != "Site requires authentication (HTTP 401)" {
		t.Errorf("Recommendations[0] = %q", a.Recommendations[0])
	}
	found := false
	for _, rec := range a.Recommendations {
		if strings.Contains(rec, "gated extraction") {
			found = true
		}
	}
	if !found {
		t.Errorf("gated-extraction recommendation missing: %v", a.Recommendations)
	}
}

func TestAnalyzeAccessForbidden(t *testing.T) {
	a := AnalyzeAccess("https://example.com/", "", 403, "", nil, nil)

	if !a.PasswordProtected || !a.AuthRequired {
		t.Errorf("403 must flag protection, got %+v", a)
	}
	if a.Recommendations[0] != "Access forbidden - authentication required (HTTP 403)" {
		t.Errorf("Recommendations[0] = %q", a.Recommendations[0])
	}
}

func TestAnalyzeAccessPublicPage(t *testing.T) {
	a := AnalyzeAccess("https://example.com/", "https://example.com/", 200,
		"Welcome to our fleet portal", nil, nil)

	if a.AuthRequired || a.PasswordProtected {
		t.Errorf("plain 200 page must be open, got %+v", a)
	}
	if a.Redirected {
		t.Error("same final URL must not count as a redirect")
	}
	last := a.Recommendations[len(a.Recommendations)-1]
	if last != "Site appears to be publicly accessible" {
		t.Errorf("last recommendation = %q", last)
	}
}

func TestAnalyzeAccessContentIndicators(t *testing.T) {
	body := "Members only area. Please log in to continue."
	links := []PageLink{
		{URL: "/signin", Text: "Sign in"},
		{URL: "/pricing", Text: "Pricing"},
	}

	a := AnalyzeAccess("https://example.com/", "", 200, body, links, nil)

	if !a.AuthRequired || !a.PasswordProtected {
		t.Errorf("indicator-bearing page must flag auth, got %+v", a)
	}
	if len(a.Indicators) == 0 {
		t.Fatal("no indicators collected")
	}

	var haveText, haveLink bool
	for _, ind := range a.Indicators {
		if strings.Contains(ind, "please log in") {
			haveText = true
		}
		if strings.Contains(ind, "Authentication link found: Sign in") {
			haveLink = true
		}
	}
	if !haveText {
		t.Errorf("auth-text indicator missing: %v", a.Indicators)
	}
	if !haveLink {
		t.Errorf("auth-link indicator missing: %v", a.Indicators)
	}
}

func TestAnalyzeAccessAuthFormOn200(t *testing.T) {
	forms := []score.AuthForm{{Action: "/login", AuthLikelihood: 0.9}}

	a := AnalyzeAccess("https://example.com/", "", 200, "", nil, forms)

	if !a.AuthRequired {
		t.Error("auth form on a 200 page must require auth")
	}
	if a.Recommendations[0] != "Authentication forms detected on the page" {
		t.Errorf("Recommendations[0] = %q", a.Recommendations[0])
	}
}

func TestAnalyzeAccessRedirect(t *testing.T) {
	a := AnalyzeAccess("https://example.com/", "https://example.com/login", 200, "", nil, nil)
	if !a.Redirected {
		t.Error("differing final URL must count as a redirect")
	}
}

// ============================================================
// Login suggestion
// ============================================================

func TestSuggestLoginConfig(t *testing.T) {
	form := score.AuthForm{
		Action:         "/login",
		Method:         "POST",
		AuthLikelihood: 0.9,
		Fields: []score.AuthField{
			{FieldDescriptor: extract.FieldDescriptor{Name: "email", Type: "email"}, Role: score.RoleUsername},
			{FieldDescriptor: extract.FieldDescriptor{Name: "pass", Type: "password"}, Role: score.RolePassword},
			{FieldDescriptor: extract.FieldDescriptor{Name: "signin", Type: "submit"}, Role: score.RoleSubmit},
		},
	}
	a := AnalyzeAccess("https://example.com/", "https://example.com/login", 200, "", nil,
		[]score.AuthForm{form})

	s := SuggestLoginConfig(a)
	if s == nil {
		t.Fatal("SuggestLoginConfig returned nil for a gated page")
	}
	if s.LoginURL != "https://example.com/login" {
		t.Errorf("LoginURL = %q, want final URL", s.LoginURL)
	}
	if s.UsernameField != "email" {
		t.Errorf("UsernameField = %q, want email", s.UsernameField)
	}
	if s.PasswordField != "pass" {
		t.Errorf("PasswordField = %q, want pass", s.PasswordField)
	}
	if s.SubmitButton != "input[name='signin']" {
		t.Errorf("SubmitButton = %q", s.SubmitButton)
	}

	foundRedirect := false
	for _, note := range s.Notes {
		if strings.Contains(note, "redirected") {
			foundRedirect = true
		}
	}
	if !foundRedirect {
		t.Errorf("redirect note missing: %v", s.Notes)
	}
}

func TestSuggestLoginConfigFallbackSubmit(t *testing.T) {
	form := score.AuthForm{
		Action:         "/login",
		AuthLikelihood: 0.6,
		Fields: []score.AuthField{
			{FieldDescriptor: extract.FieldDescriptor{Name: "pass", Type: "password"}, Role: score.RolePassword},
		},
	}
	a := AnalyzeAccess("https://example.com/", "", 401, "", nil, []score.AuthForm{form})

	s := SuggestLoginConfig(a)
	if s == nil {
		t.Fatal("SuggestLoginConfig returned nil")
	}
	if s.SubmitButton != "input[type='submit'], button[type='submit']" {
		t.Errorf("SubmitButton = %q, want generic fallback", s.SubmitButton)
	}
	if len(s.Notes) == 0 || !strings.Contains(s.Notes[0], "401") {
		t.Errorf("Notes = %v, want 401 note first", s.Notes)
	}
}

func TestSuggestLoginConfigOpenSite(t *testing.T) {
	a := AnalyzeAccess("https://example.com/", "", 200, "welcome", nil, nil)
	if s := SuggestLoginConfig(a); s != nil {
		t.Errorf("open site must yield no suggestion, got %+v", s)
	}
}

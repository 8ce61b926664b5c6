package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/apiscope/apiscope/internal/config"
)

// Login performs the form-login flow described by the resolved login
// configuration, then returns the authenticated session cookies. The
// caller follows up with Capture on the gated target; the cookies stay
// live inside this browser instance.
func (s *Session) Login(ctx context.Context, login config.LoginConfig) ([]*http.Cookie, error) {
	if login.LoginURL == "" {
		return nil, fmt.Errorf("login URL is required")
	}
	if login.Username == "" || login.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: login.LoginURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load login page: %w", err)
	}

	usernameElement, err := findField(page, login.UsernameField, []string{
		"input[type='email']",
		"input[type='text'][name*='user']",
		"input[type='text'][name*='email']",
		"input#username",
		"input#email",
	})
	if err != nil {
		return nil, fmt.Errorf("could not find username field: %w", err)
	}
	if err := usernameElement.SelectAllText(); err == nil {
		_ = usernameElement.Input(login.Username)
	}

	passwordElement, err := findField(page, login.PasswordField, []string{
		"input[type='password']",
		"input#password",
	})
	if err != nil {
		return nil, fmt.Errorf("could not find password field: %w", err)
	}
	if err := passwordElement.SelectAllText(); err == nil {
		_ = passwordElement.Input(login.Password)
	}

	submitSelectors := []string{
		"button[type='submit']",
		"input[type='submit']",
	}
	if login.SubmitButton != "" {
		submitSelectors = append([]string{login.SubmitButton}, submitSelectors...)
	}

	var submitElement *rod.Element
	for _, selector := range submitSelectors {
		el, err := page.Element(selector)
		if err == nil && el != nil {
			submitElement = el
			break
		}
	}

	if submitElement != nil {
		_ = submitElement.Click(proto.InputMouseButtonLeft, 1)
	} else {
		_ = passwordElement.Type(input.Enter)
	}

	_ = page.WaitLoad()

	wait := login.WaitTime
	if wait <= 0 {
		wait = 2 * time.Second
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !loginSucceeded(page, login.SuccessIndicator) {
		return nil, fmt.Errorf("login appears to have failed")
	}

	rodCookies, err := page.Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(rodCookies))
	for _, c := range rodCookies {
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("no session cookies after login")
	}
	return cookies, nil
}

// findField tries an explicit name selector first, then the fallbacks.
func findField(page *rod.Page, name string, fallbacks []string) (*rod.Element, error) {
	selectors := fallbacks
	if name != "" {
		selectors = append([]string{fmt.Sprintf("input[name='%s']", name)}, fallbacks...)
	}

	for _, selector := range selectors {
		el, err := page.Element(selector)
		if err == nil && el != nil {
			return el, nil
		}
	}
	return nil, fmt.Errorf("no selector matched (tried %d)", len(selectors))
}

// loginSucceeded decides whether the flow landed past the login form.
// A configured success indicator is authoritative; otherwise still
// sitting on a login-looking URL with a visible error means failure.
func loginSucceeded(page *rod.Page, successIndicator string) bool {
	if successIndicator != "" {
		el, err := page.Element(successIndicator)
		return err == nil && el != nil
	}

	info, err := page.Info()
	if err != nil {
		return true
	}

	currentURL := strings.ToLower(info.URL)
	if strings.Contains(currentURL, "login") || strings.Contains(currentURL, "signin") {
		errorSelectors := []string{
			".error",
			".alert-danger",
			".alert-error",
			"[class*='error']",
			"[class*='invalid']",
		}
		for _, selector := range errorSelectors {
			el, err := page.Element(selector)
			if err == nil && el != nil {
				text, _ := el.Text()
				if text != "" {
					return false
				}
			}
		}
	}
	return true
}

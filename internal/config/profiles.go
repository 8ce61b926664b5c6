package config

import (
	"sort"
	"time"
)

// Profile is a known gated platform's login flow: where the form
// lives, which fields carry credentials, and which selector confirms a
// successful login.
type Profile struct {
	Name             string        `json:"name" yaml:"name"`
	Description      string        `json:"description" yaml:"description"`
	LoginURL         string        `json:"login_url" yaml:"login_url"`
	UsernameField    string        `json:"username_field" yaml:"username_field"`
	PasswordField    string        `json:"password_field" yaml:"password_field"`
	SubmitButton     string        `json:"submit_button" yaml:"submit_button"`
	SuccessIndicator string        `json:"success_indicator" yaml:"success_indicator"`
	WaitTime         time.Duration `json:"wait_time" yaml:"wait_time"`
	TargetSelectors  []string      `json:"target_selectors" yaml:"target_selectors"`
	Notes            string        `json:"notes" yaml:"notes"`
}

var builtinProfiles = map[string]Profile{
	"salesforce": {
		Name:             "Salesforce",
		Description:      "Salesforce CRM and API platform",
		LoginURL:         "https://login.salesforce.com/",
		UsernameField:    "username",
		PasswordField:    "pw",
		SubmitButton:     "input[type='submit']",
		SuccessIndicator: ".profile-link",
		WaitTime:         5 * time.Second,
		TargetSelectors:  []string{".api-content", ".endpoint-list", ".swagger-ui", "[data-api]"},
		Notes:            "Salesforce uses OAuth 2.0 and has extensive API documentation behind the login.",
	},
	"hubspot": {
		Name:             "HubSpot",
		Description:      "HubSpot marketing and CRM platform",
		LoginURL:         "https://app.hubspot.com/login",
		UsernameField:    "username",
		PasswordField:    "password",
		SubmitButton:     "button[type='submit']",
		SuccessIndicator: ".nav-container",
		WaitTime:         5 * time.Second,
		TargetSelectors:  []string{".api-docs", ".endpoint-container", "[data-testid='api-doc']", ".swagger-section"},
		Notes:            "HubSpot has comprehensive API documentation and developer tools behind authentication.",
	},
	"stripe": {
		Name:             "Stripe",
		Description:      "Stripe payment processing platform",
		LoginURL:         "https://dashboard.stripe.com/login",
		UsernameField:    "email",
		PasswordField:    "password",
		SubmitButton:     "button[type='submit']",
		SuccessIndicator: ".dashboard-header",
		WaitTime:         5 * time.Second,
		TargetSelectors:  []string{".api-docs", ".endpoint-list", "[data-testid='api-reference']", ".stripe-docs"},
		Notes:            "Stripe has excellent API documentation with live examples and testing tools.",
	},
	"twilio": {
		Name:             "Twilio",
		Description:      "Twilio communication platform",
		LoginURL:         "https://www.twilio.com/login",
		UsernameField:    "email",
		PasswordField:    "password",
		SubmitButton:     "button[type='submit']",
		SuccessIndicator: ".dashboard-nav",
		WaitTime:         5 * time.Second,
		TargetSelectors:  []string{".api-docs", ".endpoint-list", "[data-testid='api-reference']", ".twilio-docs"},
		Notes:            "Twilio provides comprehensive API documentation with code examples in multiple languages.",
	},
	"aws": {
		Name:             "AWS",
		Description:      "Amazon Web Services platform",
		LoginURL:         "https://signin.aws.amazon.com/",
		UsernameField:    "username",
		PasswordField:    "password",
		SubmitButton:     "input[type='submit']",
		SuccessIndicator: ".nav-menu",
		WaitTime:         5 * time.Second,
		TargetSelectors:  []string{".api-docs", ".endpoint-list", "[data-testid='api-reference']", ".aws-docs"},
		Notes:            "AWS has extensive API documentation for all services behind authentication.",
	},
	"google_cloud": {
		Name:             "Google Cloud",
		Description:      "Google Cloud Platform",
		LoginURL:         "https://console.cloud.google.com/",
		UsernameField:    "identifier",
		PasswordField:    "password",
		SubmitButton:     "button[type='submit']",
		SuccessIndicator: ".cloud-console-header",
		WaitTime:         5 * time.Second,
		TargetSelectors:  []string{".api-docs", ".endpoint-list", "[data-testid='api-reference']", ".gcp-docs"},
		Notes:            "Google Cloud has comprehensive API documentation and client libraries.",
	},
	"azure": {
		Name:             "Microsoft Azure",
		Description:      "Microsoft Azure cloud platform",
		LoginURL:         "https://portal.azure.com/",
		UsernameField:    "loginfmt",
		PasswordField:    "passwd",
		SubmitButton:     "input[type='submit']",
		SuccessIndicator: ".fxs-portal-header",
		WaitTime:         5 * time.Second,
		TargetSelectors:  []string{".api-docs", ".endpoint-list", "[data-testid='api-reference']", ".azure-docs"},
		Notes:            "Azure provides extensive API documentation and SDKs for all services.",
	},
	"custom": {
		Name:            "Custom/Generic",
		Description:     "Custom authentication configuration",
		WaitTime:        5 * time.Second,
		TargetSelectors: []string{".api-content", ".endpoint-list", "[data-api]", ".swagger-ui"},
		Notes:           "Use this for custom authentication flows. Fill in the specific selectors and URLs.",
	},
}

// LookupProfile returns the named built-in profile.
func LookupProfile(name string) (Profile, bool) {
	p, ok := builtinProfiles[name]
	return p, ok
}

// ProfileNames returns the built-in profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommonContentSelectors lists CSS selectors that typically wrap API
// reference content on documentation portals.
func CommonContentSelectors() []string {
	return []string{
		".api-docs",
		".endpoint-list",
		".swagger-ui",
		"[data-api]",
		".api-content",
		".endpoint-container",
		"[data-testid='api-reference']",
		".api-reference",
		".endpoint-details",
		".method-list",
		".parameter-table",
		".response-example",
	}
}

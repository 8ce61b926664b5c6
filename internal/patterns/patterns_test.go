package patterns

import (
	"testing"
)

func TestMatchesEndpointHref(t *testing.T) {
	tests := []struct {
		name string
		href string
		want bool
	}{
		{"api path", "/api/users", true},
		{"rest path", "/rest/orders", true},
		{"versioned path", "/v1/items", true},
		{"versioned v12", "/v12/items", true},
		{"graphql", "/graphql", true},
		{"swagger", "/swagger/index.html", true},
		{"openapi", "/openapi.json", true},
		{"case insensitive", "/API/Users", true},
		{"absolute URL", "https://example.com/api/v1/vehicles", true},
		{"plain page", "/about", false},
		{"empty", "", false},
		{"version-like word", "/vendor/items", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesEndpointHref(tt.href); got != tt.want {
				t.Errorf("MatchesEndpointHref(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestURLRuleMatches(t *testing.T) {
	// A multi-substring rule matches any variant but is still one rule.
	rule := URLRule{Substrings: []string{"/v1/", "/v2/"}, Weight: 0.2, Category: CategoryREST}

	tests := []struct {
		url  string
		want bool
	}{
		{"/api/v1/users", true},
		{"/api/v2/users", true},
		{"/api/v1/v2/users", true},
		{"/api/users", false},
	}

	for _, tt := range tests {
		if got := rule.Matches(tt.url); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestMatchesRESTURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/api/users", true},
		{"/rest/orders", true},
		{"/v1/items", true},
		{"/v2/items", true},
		{"/V1/items", true},
		{"/graphql", false},
		{"/v3/items", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := MatchesRESTURL(tt.url); got != tt.want {
			t.Errorf("MatchesRESTURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalizeURLPattern(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "numeric id",
			url:  "/api/users/42",
			want: "/api/users/{id}",
		},
		{
			name: "multiple ids",
			url:  "/api/users/42/orders/7",
			want: "/api/users/{id}/orders/{id}",
		},
		{
			name: "hex hash",
			url:  "/files/deadbeefcafe1234",
			want: "/files/{hash}",
		},
		{
			name: "long alphanumeric token",
			url:  "/session/A1b2C3d4E5f6G7h8I9j0K1L2",
			want: "/session/{token}",
		},
		{
			name: "short segments untouched",
			url:  "/api/users/list",
			want: "/api/users/list",
		},
		{
			name: "no path variables",
			url:  "/api/status",
			want: "/api/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURLPattern(tt.url)
			if got != tt.want {
				t.Errorf("NormalizeURLPattern(%q) = %q, want %q", tt.url, got, tt.want)
			}

			// Normalizing a normalized pattern must be a no-op.
			if again := NormalizeURLPattern(got); again != got {
				t.Errorf("NormalizeURLPattern not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestCategoryRuleOrder(t *testing.T) {
	// GraphQL must outrank OAuth, which must outrank webhook.
	wantOrder := []Category{CategoryGraphQL, CategoryOAuth, CategoryWebhook, CategoryWebhook}
	if len(CategoryRules) != len(wantOrder) {
		t.Fatalf("len(CategoryRules) = %d, want %d", len(CategoryRules), len(wantOrder))
	}
	for i, rule := range CategoryRules {
		if rule.Category != wantOrder[i] {
			t.Errorf("CategoryRules[%d] = %s, want %s", i, rule.Category, wantOrder[i])
		}
	}
}

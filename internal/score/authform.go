package score

import (
	"errors"
	"strings"

	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/patterns"
)

// FieldRole classifies what part a field plays in an authentication form.
type FieldRole string

const (
	RoleUsername FieldRole = "username"
	RolePassword FieldRole = "password"
	RoleSubmit   FieldRole = "submit"
	RoleOther    FieldRole = "other"
)

// Auth likelihood levels. Both a password and a username field present
// make a near-certain login form; one of the two still suggests it;
// neither leaves only residual likelihood.
const (
	likelihoodBoth   = 0.9
	likelihoodSingle = 0.6
	likelihoodNone   = 0.2
	likelihoodCutoff = 0.3
)

// ErrInvalidForm rejects a descriptor with no action and no fields.
var ErrInvalidForm = errors.New("form descriptor has no action and no fields")

// AuthField is a form field annotated with its classified role.
type AuthField struct {
	extract.FieldDescriptor
	Role FieldRole `json:"role"`
}

// AuthForm is a form annotated with per-field roles and an overall
// authentication likelihood.
type AuthForm struct {
	Action         string      `json:"action"`
	Method         string      `json:"method"`
	Fields         []AuthField `json:"fields"`
	AuthLikelihood float64     `json:"auth_likelihood"`
}

// ClassifyField assigns a role from the fixed vocabularies, matched
// case-insensitively against the field's type, name, and id together.
// Password wins over username wins over submit.
func ClassifyField(f extract.FieldDescriptor) FieldRole {
	if strings.EqualFold(f.Type, "password") {
		return RolePassword
	}

	text := strings.ToLower(f.Type + " " + f.Name + " " + f.ID)
	for _, ind := range patterns.UsernameIndicators {
		if strings.Contains(text, ind) {
			return RoleUsername
		}
	}
	for _, ind := range patterns.SubmitIndicators {
		if strings.Contains(text, ind) {
			return RoleSubmit
		}
	}
	return RoleOther
}

// ClassifyForm annotates a single form. It errors only on a
// caller-contract violation: a descriptor with no action and no fields
// at all.
func ClassifyForm(form extract.FormDescriptor) (AuthForm, error) {
	if form.Action == "" && len(form.Fields) == 0 {
		return AuthForm{}, ErrInvalidForm
	}

	af := AuthForm{
		Action: form.Action,
		Method: form.Method,
		Fields: make([]AuthField, 0, len(form.Fields)),
	}

	hasPassword := false
	hasUsername := false
	for _, f := range form.Fields {
		role := ClassifyField(f)
		switch role {
		case RolePassword:
			hasPassword = true
		case RoleUsername:
			hasUsername = true
		}
		af.Fields = append(af.Fields, AuthField{FieldDescriptor: f, Role: role})
	}

	// Count distinct auth-relevant roles, each at most once.
	switch {
	case hasPassword && hasUsername:
		af.AuthLikelihood = likelihoodBoth
	case hasPassword || hasUsername:
		af.AuthLikelihood = likelihoodSingle
	default:
		af.AuthLikelihood = likelihoodNone
	}

	return af, nil
}

// DetectAuthForms classifies a batch and keeps only forms whose
// likelihood clears the reporting cutoff. A rejected descriptor drops
// that one item; the batch continues.
func DetectAuthForms(forms []extract.FormDescriptor) []AuthForm {
	out := make([]AuthForm, 0)
	for _, form := range forms {
		af, err := ClassifyForm(form)
		if err != nil {
			continue
		}
		if af.AuthLikelihood > likelihoodCutoff {
			out = append(out, af)
		}
	}
	return out
}

// BestAuthForm returns the form with the highest likelihood, ties broken
// by first-encountered order. Used as the default login configuration
// suggestion when a page carries several candidate forms.
func BestAuthForm(forms []AuthForm) (AuthForm, bool) {
	if len(forms) == 0 {
		return AuthForm{}, false
	}
	best := forms[0]
	for _, f := range forms[1:] {
		if f.AuthLikelihood > best.AuthLikelihood {
			best = f
		}
	}
	return best, true
}

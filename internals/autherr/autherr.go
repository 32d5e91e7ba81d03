// Package autherr is the launcher wide vocabulary for login failures.
// Every provider client collapses its own error zoo into a Kind, so the
// rest of the launcher can treat "login failed" uniformly.
package autherr

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a failed session operation.
type Kind string

const (
	// KindIllegalArgument means the provider rejected the request shape.
	// Valid local input should never produce this, so it usually signals
	// a launcher bug.
	KindIllegalArgument Kind = "IllegalArgument"
	// KindForbidden covers bad credentials and revoked or expired sessions
	KindForbidden Kind = "Forbidden"
	// KindTwoFactorRequired is not a real failure. The provider wants a
	// one time code before it hands out a session.
	KindTwoFactorRequired Kind = "TwoFactorRequired"
	// KindUnknown is everything else: transport faults, unparseable
	// bodies and provider codes we have never seen
	KindUnknown Kind = "Unknown"
)

// Error is the structured result of a failed session operation. Provider
// clients return it instead of letting transport errors escape.
type Error struct {
	Kind Kind
	// InvalidCredentials is set when a Forbidden response was caused by a
	// wrong username or password specifically. The UI shows a more
	// helpful message for that case.
	InvalidCredentials bool
	// Message is the provider supplied error message. Safe to log.
	Message string
	// Raw is the unparsed provider payload, kept for diagnostics only.
	// It never contains an access token.
	Raw json.RawMessage
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

// Is allows errors.Is(err, &Error{Kind: …}) style matching on the kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Unknown wraps a transport level fault. The original error text is kept
// as the message so it still shows up in logs.
func Unknown(err error) *Error {
	return &Error{Kind: KindUnknown, Message: err.Error()}
}

// Translator resolves an opaque key to a localized string. Implemented
// by lang.Bundle; defined here so this package stays free of any
// localization knowledge.
type Translator interface {
	Query(id string) string
}

// Displayable is a (title, description) pair ready for presentation.
type Displayable struct {
	Title string
	Desc  string
}

// Displayable resolves a kind to UI strings. It knows nothing about
// providers, only about kinds.
func (k Kind) Displayable(t Translator) Displayable {
	switch k {
	case KindIllegalArgument:
		return Displayable{
			Title: t.Query("auth.error.illegalArgument.title"),
			Desc:  t.Query("auth.error.illegalArgument.desc"),
		}
	case KindForbidden:
		return Displayable{
			Title: t.Query("auth.error.forbidden.title"),
			Desc:  t.Query("auth.error.forbidden.desc"),
		}
	case KindTwoFactorRequired:
		return Displayable{
			Title: t.Query("auth.error.twoFactorRequired.title"),
			Desc:  t.Query("auth.error.twoFactorRequired.desc"),
		}
	default:
		return Displayable{
			Title: t.Query("auth.error.unknown.title"),
			Desc:  t.Query("auth.error.unknown.desc"),
		}
	}
}

// Displayable resolves the error to UI strings, preferring the more
// specific invalid-credentials message when that detail is known.
func (e *Error) Displayable(t Translator) Displayable {
	if e.Kind == KindForbidden && e.InvalidCredentials {
		return Displayable{
			Title: t.Query("auth.error.invalidCredentials.title"),
			Desc:  t.Query("auth.error.invalidCredentials.desc"),
		}
	}
	return e.Kind.Displayable(t)
}

package autherr

import (
	"errors"
	"fmt"
	"testing"
)

type fakeTranslator struct{}

func (fakeTranslator) Query(id string) string { return id }

func TestDisplayable(t *testing.T) {
	translator := fakeTranslator{}

	d := KindTwoFactorRequired.Displayable(translator)
	if d.Title != "auth.error.twoFactorRequired.title" {
		t.Fatalf("unexpected title key %q", d.Title)
	}

	// the invalid credentials detail picks the more specific message
	err := &Error{Kind: KindForbidden, InvalidCredentials: true}
	if d := err.Displayable(translator); d.Title != "auth.error.invalidCredentials.title" {
		t.Fatalf("unexpected title key %q", d.Title)
	}

	// without the detail the generic forbidden message is used
	err = &Error{Kind: KindForbidden}
	if d := err.Displayable(translator); d.Title != "auth.error.forbidden.title" {
		t.Fatalf("unexpected title key %q", d.Title)
	}
}

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("adding account: %w", &Error{Kind: KindTwoFactorRequired})

	var authErr *Error
	if !errors.As(err, &authErr) {
		t.Fatal("expected errors.As to unwrap the auth error")
	}
	if !errors.Is(err, &Error{Kind: KindTwoFactorRequired}) {
		t.Fatal("expected errors.Is to match on the kind")
	}
	if errors.Is(err, &Error{Kind: KindForbidden}) {
		t.Fatal("kinds must not cross match")
	}
}

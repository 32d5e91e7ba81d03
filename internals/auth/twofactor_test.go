package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/polarlauncher/polar/internals/autherr"
	"github.com/polarlauncher/polar/internals/yggdrasil"
)

func TestTwoFactorChallenge_Complete(t *testing.T) {
	var seenSecret string
	ely := &fakeYggdrasil{
		authenticateFn: func(username, password string) (*yggdrasil.AuthResponse, error) {
			seenSecret = password
			if password == "secret:123456" {
				return &yggdrasil.AuthResponse{
					AccessToken:     "tfa",
					ClientToken:     "client-token-1",
					SelectedProfile: &yggdrasil.Profile{ID: "uuid2", Name: "guarded"},
				}, nil
			}
			return nil, &autherr.Error{Kind: autherr.KindTwoFactorRequired}
		},
	}
	manager, _ := testManager(t, ely)

	challenge, err := manager.TwoFactorChallenge(ProviderEly, "guarded", "secret")
	if err != nil {
		t.Fatal(err)
	}

	session, err := challenge.Complete(context.Background(), "123456")
	if err != nil {
		t.Fatal(err)
	}
	if session.AccessToken != "tfa" {
		t.Fatalf("expected access token tfa, got %q", session.AccessToken)
	}
	if seenSecret != "secret:123456" {
		t.Fatalf("expected the combined secret, provider saw %q", seenSecret)
	}
	if ely.calls.authenticate != 1 {
		t.Fatalf("expected exactly one retry, got %d calls", ely.calls.authenticate)
	}

	// the challenge is spent
	if _, err := challenge.Complete(context.Background(), "123456"); !errors.Is(err, ErrChallengeSpent) {
		t.Fatalf("expected ErrChallengeSpent, got %v", err)
	}
	if ely.calls.authenticate != 1 {
		t.Fatal("a spent challenge must not reach the provider")
	}
}

func TestTwoFactorChallenge_SecondSignalIsTerminal(t *testing.T) {
	ely := &fakeYggdrasil{
		authenticateFn: func(username, password string) (*yggdrasil.AuthResponse, error) {
			return nil, &autherr.Error{Kind: autherr.KindTwoFactorRequired}
		},
	}
	manager, _ := testManager(t, ely)

	challenge, err := manager.TwoFactorChallenge(ProviderEly, "guarded", "secret")
	if err != nil {
		t.Fatal(err)
	}

	// even another TwoFactorRequired spends the challenge – no prompt
	// loops
	_, err = challenge.Complete(context.Background(), "123456")
	var authErr *autherr.Error
	if !errors.As(err, &authErr) || authErr.Kind != autherr.KindTwoFactorRequired {
		t.Fatalf("expected TwoFactorRequired, got %v", err)
	}
	if _, err := challenge.Complete(context.Background(), "654321"); !errors.Is(err, ErrChallengeSpent) {
		t.Fatalf("expected ErrChallengeSpent, got %v", err)
	}
	if ely.calls.authenticate != 1 {
		t.Fatalf("expected exactly one retry, got %d", ely.calls.authenticate)
	}
}

func TestTwoFactorChallenge_LocalCodeValidation(t *testing.T) {
	ely := &fakeYggdrasil{authenticateFn: successAuthenticate}
	manager, _ := testManager(t, ely)

	challenge, err := manager.TwoFactorChallenge(ProviderEly, "guarded", "secret")
	if err != nil {
		t.Fatal(err)
	}

	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		_, err := challenge.Complete(context.Background(), code)
		var authErr *autherr.Error
		if !errors.As(err, &authErr) || authErr.Kind != autherr.KindIllegalArgument {
			t.Fatalf("expected a local IllegalArgument for %q, got %v", code, err)
		}
	}

	if ely.totalCalls() != 0 {
		t.Fatal("malformed codes must be rejected without a network round trip")
	}

	// a malformed code does not spend the challenge
	if _, err := challenge.Complete(context.Background(), "123456"); err != nil {
		var authErr *autherr.Error
		if errors.As(err, &authErr) && authErr.Kind == autherr.KindIllegalArgument {
			t.Fatal("a well formed code was rejected locally")
		}
	}
}

func TestTwoFactorChallenge_MicrosoftRejected(t *testing.T) {
	manager, _ := testManager(t, &fakeYggdrasil{authenticateFn: successAuthenticate})

	if _, err := manager.TwoFactorChallenge(ProviderMicrosoft, "", ""); err == nil {
		t.Fatal("microsoft accounts must not get a yggdrasil two factor challenge")
	}
}

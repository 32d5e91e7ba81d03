package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/polarlauncher/polar/internals/autherr"
)

// ErrChallengeSpent is returned when a two factor challenge is completed
// more than once
var ErrChallengeSpent = errors.New("two factor challenge was already used")

// TwoFactorChallenge is the single retry sub-protocol started when a
// provider answers a login with TwoFactorRequired. It holds the original
// credential so the caller only needs to supply the one time code.
//
// A challenge can be completed exactly once. Whatever the retry returns
// – success, a failure or even another TwoFactorRequired – is terminal;
// a second prompt is never retried automatically, so a misbehaving
// provider cannot trap the user in a prompt loop.
type TwoFactorChallenge struct {
	manager  *Manager
	provider Provider
	username string
	password string
	spent    bool
}

// TwoFactorChallenge builds the retry for a login that was answered
// with TwoFactorRequired. The credential is held in memory for the
// duration of the challenge only – nothing is persisted.
func (m *Manager) TwoFactorChallenge(provider Provider, username, password string) (*TwoFactorChallenge, error) {
	switch provider {
	case ProviderMojang, ProviderEly:
		// fine, Yggdrasil providers encode the code into the secret
	case ProviderMicrosoft:
		return nil, errors.New("microsoft logins handle two factor auth in the browser")
	default:
		return nil, errors.Errorf("unknown account provider %q", provider)
	}

	return &TwoFactorChallenge{
		manager:  m,
		provider: provider,
		username: username,
		password: password,
	}, nil
}

// Complete retries the login with the collected one time code. The code
// is format checked locally – a malformed code is rejected without a
// network round trip and without spending the challenge.
func (c *TwoFactorChallenge) Complete(ctx context.Context, code string) (*Session, error) {
	if c.spent {
		return nil, ErrChallengeSpent
	}
	if !validTwoFactorCode(code) {
		return nil, autherr.New(autherr.KindIllegalArgument, "the code must be exactly six digits")
	}

	c.spent = true
	client := c.manager.yggdrasilClient(c.provider)
	secret := client.CombineTwoFactor(c.password, code)
	return c.manager.addYggdrasilAccount(ctx, c.provider, c.username, secret)
}

// validTwoFactorCode checks for exactly six ASCII digits
func validTwoFactorCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

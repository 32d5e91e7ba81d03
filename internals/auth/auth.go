// Package auth owns launcher accounts and their sessions. It is the
// single entry point the UI layer calls – which identity provider backs
// an account is an implementation detail behind the Manager.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/polarlauncher/polar/internals/microsoft"
	"github.com/polarlauncher/polar/internals/yggdrasil"
)

// Provider tags the identity service backing an account. Dispatch on it
// is always an exhaustive switch – an unhandled tag is a bug, not a
// fallthrough.
type Provider uint8

const (
	// ProviderMojang is a Mojang-compatible Yggdrasil server
	ProviderMojang Provider = iota + 1
	// ProviderEly is ely.by
	ProviderEly
	// ProviderMicrosoft is the Microsoft account chain
	ProviderMicrosoft
)

func (p Provider) String() string {
	switch p {
	case ProviderMojang:
		return "mojang"
	case ProviderEly:
		return "ely"
	case ProviderMicrosoft:
		return "microsoft"
	default:
		return fmt.Sprintf("provider(%d)", uint8(p))
	}
}

// ParseProvider parses a provider name as found in config or CLI flags
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "mojang":
		return ProviderMojang, nil
	case "ely":
		return ProviderEly, nil
	case "microsoft":
		return ProviderMicrosoft, nil
	default:
		return 0, fmt.Errorf("unknown account provider %q", s)
	}
}

// MarshalText makes the tag round trip through the JSON session store
// as its name rather than a bare number
func (p Provider) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Provider) UnmarshalText(text []byte) error {
	parsed, err := ParseProvider(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Profile identifies the player behind a session
type Profile struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Session is the live provider issued credential material for one
// account. The Manager owns all sessions; everything it hands out is a
// copy, so callers can read but never mutate stored state.
type Session struct {
	Provider    Provider `json:"provider"`
	AccessToken string   `json:"accessToken"`
	ClientToken string   `json:"clientToken"`
	Profile     Profile  `json:"profile"`
	// Username is the login identifier. Kept because the ely.by skin
	// system indexes by name, not uuid.
	Username string `json:"username,omitempty"`
	// Microsoft holds the full Microsoft credential chain so the token
	// can be refreshed silently across launcher restarts
	Microsoft *microsoft.Credentials `json:"microsoft,omitempty"`
	// Invalidated is set once both validate and refresh have failed.
	// The account then needs a fresh login.
	Invalidated bool      `json:"invalidated,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// String names the session without leaking the access token
func (s Session) String() string {
	return fmt.Sprintf("%s account %q (%s)", s.Provider, s.Profile.Name, s.Profile.UUID)
}

// YggdrasilAPI is the provider surface the Manager drives for password
// based accounts. Implemented by yggdrasil.Client.
type YggdrasilAPI interface {
	Authenticate(ctx context.Context, username, password, clientToken string, requestUser bool) (*yggdrasil.AuthResponse, error)
	Validate(ctx context.Context, accessToken, clientToken string) (bool, error)
	Refresh(ctx context.Context, accessToken, clientToken string) (*yggdrasil.AuthResponse, error)
	Invalidate(ctx context.Context, accessToken, clientToken string) (bool, error)
	CombineTwoFactor(password, code string) string
}

// MicrosoftAPI is the provider surface for Microsoft backed accounts.
// Implemented by microsoft.Client.
type MicrosoftAPI interface {
	Login(ctx context.Context) (*microsoft.Credentials, error)
	EnsureCredentials(ctx context.Context, creds *microsoft.Credentials) (*microsoft.Credentials, error)
}

// Store persists the client token and sessions between launcher runs.
// Implemented by credentials.Store.
type Store interface {
	ClientToken() (string, error)
	SaveClientToken(token string) error
	Sessions() ([]Session, error)
	SaveSessions(sessions []Session) error
}

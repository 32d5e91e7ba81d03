package auth

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dchest/uniuri"
	"github.com/pkg/errors"

	"github.com/polarlauncher/polar/internals/autherr"
)

// ErrNoSuchAccount is returned for operations on an unknown account id
var ErrNoSuchAccount = errors.New("no such account")

// account pairs a stored session with the mutex that serializes session
// operations on it. Operations on different accounts run independently.
type account struct {
	mu      sync.Mutex
	session Session
}

// Manager orchestrates accounts across providers. It owns the client
// token, the account indexed session store and the selected account
// pointer.
type Manager struct {
	store     Store
	mojang    YggdrasilAPI
	ely       YggdrasilAPI
	microsoft MicrosoftAPI

	clientToken string

	// mu guards the maps and the selection, never held across a
	// network call
	mu       sync.Mutex
	accounts map[string]*account
	selected string

	// persistMu serializes writes to the store. It is taken before the
	// snapshot under mu, so snapshots reach the store in the order they
	// were taken and an older one can never overwrite a newer one.
	persistMu sync.Mutex
}

// NewManager restores persisted state from the store. On a first run it
// generates the installation wide client token and persists it.
func NewManager(store Store, mojangClient, elyClient YggdrasilAPI, microsoftClient MicrosoftAPI) (*Manager, error) {
	m := &Manager{
		store:     store,
		mojang:    mojangClient,
		ely:       elyClient,
		microsoft: microsoftClient,
		accounts:  map[string]*account{},
	}

	token, err := store.ClientToken()
	if err != nil {
		return nil, errors.Wrap(err, "reading stored client token")
	}
	if token == "" {
		token = uniuri.NewLen(32)
		if err := store.SaveClientToken(token); err != nil {
			return nil, errors.Wrap(err, "persisting new client token")
		}
		log.Println("Generated a new launcher client token")
	}
	m.clientToken = token

	sessions, err := store.Sessions()
	if err != nil {
		return nil, errors.Wrap(err, "reading stored sessions")
	}
	for i := range sessions {
		s := sessions[i]
		m.accounts[s.Profile.UUID] = &account{session: s}
	}

	return m, nil
}

// ClientToken returns the stable per installation client token
func (m *Manager) ClientToken() string { return m.clientToken }

// AddAccount authenticates against the given provider and stores the
// resulting session. A TwoFactorRequired outcome is handed back
// unchanged and leaves the stored state untouched – no partial session
// is ever persisted.
//
// For ProviderMicrosoft the username/password arguments are ignored;
// the interactive browser flow collects the credentials.
func (m *Manager) AddAccount(ctx context.Context, provider Provider, username, password string) (*Session, error) {
	switch provider {
	case ProviderMojang, ProviderEly:
		return m.addYggdrasilAccount(ctx, provider, username, password)
	case ProviderMicrosoft:
		return m.addMicrosoftAccount(ctx)
	default:
		return nil, errors.Errorf("unknown account provider %q", provider)
	}
}

func (m *Manager) addYggdrasilAccount(ctx context.Context, provider Provider, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	// reject obviously unusable credentials locally, without a network
	// round trip
	if username == "" || password == "" {
		return nil, &autherr.Error{
			Kind:               autherr.KindForbidden,
			InvalidCredentials: true,
			Message:            "username and password must not be empty",
		}
	}

	client := m.yggdrasilClient(provider)
	res, err := client.Authenticate(ctx, username, password, m.clientToken, true)
	if err != nil {
		return nil, err
	}
	if res.SelectedProfile == nil {
		return nil, autherr.New(autherr.KindUnknown, "provider returned no game profile")
	}

	session := Session{
		Provider:    provider,
		AccessToken: res.AccessToken,
		ClientToken: res.ClientToken,
		Profile:     Profile{UUID: res.SelectedProfile.ID, Name: res.SelectedProfile.Name},
		Username:    username,
		AddedAt:     time.Now(),
	}
	return m.storeSession(session)
}

func (m *Manager) addMicrosoftAccount(ctx context.Context) (*Session, error) {
	creds, err := m.microsoft.Login(ctx)
	if err != nil {
		return nil, err
	}

	session := Session{
		Provider:    ProviderMicrosoft,
		AccessToken: creds.GetAccessToken(),
		ClientToken: m.clientToken,
		Profile:     Profile{UUID: creds.GetUUID(), Name: creds.GetPlayerName()},
		Microsoft:   creds,
		AddedAt:     time.Now(),
	}
	return m.storeSession(session)
}

// storeSession stores (or replaces) the session, selects the account
// and persists everything
func (m *Manager) storeSession(session Session) (*Session, error) {
	m.mu.Lock()
	uuid := session.Profile.UUID
	if existing, ok := m.accounts[uuid]; ok {
		existing.session = session
	} else {
		m.accounts[uuid] = &account{session: session}
	}
	m.selected = uuid
	m.mu.Unlock()

	if err := m.persist(); err != nil {
		return nil, err
	}
	return &session, nil
}

// EnsureValid returns a usable session for the account, escalating
// validate → refresh → re-login. The user is only ever asked for
// credentials again after validate and refresh have both been rejected
// by the provider; in that case the session is marked invalidated and a
// Forbidden error surfaces so the UI can prompt. A provider that is
// merely unreachable surfaces as Unknown and leaves the session
// untouched, so the user can retry once the outage is over.
func (m *Manager) EnsureValid(ctx context.Context, uuid string) (*Session, error) {
	acc, err := m.account(uuid)
	if err != nil {
		return nil, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	session := acc.session
	if session.Invalidated {
		return nil, autherr.New(autherr.KindForbidden, "session was invalidated, please log in again")
	}

	switch session.Provider {
	case ProviderMojang, ProviderEly:
		return m.ensureYggdrasilValid(ctx, acc)
	case ProviderMicrosoft:
		return m.ensureMicrosoftValid(ctx, acc)
	default:
		return nil, errors.Errorf("unknown account provider %q", session.Provider)
	}
}

func (m *Manager) ensureYggdrasilValid(ctx context.Context, acc *account) (*Session, error) {
	session := acc.session
	client := m.yggdrasilClient(session.Provider)

	valid, err := client.Validate(ctx, session.AccessToken, session.ClientToken)
	if err != nil {
		return nil, err
	}
	if valid {
		// success does not mutate anything
		view := session
		return &view, nil
	}

	log.Printf("Session for %s is stale, refreshing", session.Profile.Name)
	res, err := client.Refresh(ctx, session.AccessToken, session.ClientToken)
	if err != nil {
		var authErr *autherr.Error
		if !errors.As(err, &authErr) || authErr.Kind == autherr.KindUnknown {
			// an unreachable provider is not a verdict on the session;
			// leave it untouched so a later retry can still succeed
			return nil, err
		}
		// the provider rejected the token itself, only a fresh login
		// can help now
		acc.session.Invalidated = true
		if perr := m.persist(); perr != nil {
			log.Printf("Could not persist invalidated session: %s", perr)
		}
		return nil, &autherr.Error{
			Kind:    autherr.KindForbidden,
			Message: authErr.Message,
			Raw:     authErr.Raw,
		}
	}

	acc.session.AccessToken = res.AccessToken
	if err := m.persist(); err != nil {
		return nil, err
	}
	view := acc.session
	return &view, nil
}

func (m *Manager) ensureMicrosoftValid(ctx context.Context, acc *account) (*Session, error) {
	session := acc.session
	creds, err := m.microsoft.EnsureCredentials(ctx, session.Microsoft)
	if err != nil {
		acc.session.Invalidated = true
		if perr := m.persist(); perr != nil {
			log.Printf("Could not persist invalidated session: %s", perr)
		}
		return nil, autherr.New(autherr.KindForbidden, "microsoft session could not be refreshed")
	}

	if creds != session.Microsoft {
		acc.session.AccessToken = creds.GetAccessToken()
		acc.session.Microsoft = creds
		if err := m.persist(); err != nil {
			return nil, err
		}
	}
	view := acc.session
	return &view, nil
}

// RemoveAccount invalidates the session remotely (best effort – local
// state is the source of truth) and removes the account locally
func (m *Manager) RemoveAccount(ctx context.Context, uuid string) error {
	acc, err := m.account(uuid)
	if err != nil {
		return err
	}

	acc.mu.Lock()
	session := acc.session
	switch session.Provider {
	case ProviderMojang, ProviderEly:
		client := m.yggdrasilClient(session.Provider)
		if ok, err := client.Invalidate(ctx, session.AccessToken, session.ClientToken); err != nil || !ok {
			log.Printf("Could not invalidate session for %s remotely, removing locally anyway", session.Profile.Name)
		}
	case ProviderMicrosoft:
		// there is nothing to revoke on the Minecraft side, dropping the
		// stored credentials is enough
	}
	acc.mu.Unlock()

	m.mu.Lock()
	delete(m.accounts, uuid)
	if m.selected == uuid {
		m.selected = ""
	}
	m.mu.Unlock()

	return m.persist()
}

// SelectAccount makes the account the active one. This is a pure
// pointer swap – it never issues a network call.
func (m *Manager) SelectAccount(uuid string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[uuid]
	if !ok {
		return nil, errors.Wrap(ErrNoSuchAccount, uuid)
	}
	m.selected = uuid
	view := acc.session
	return &view, nil
}

// SelectedAccount returns the active account, if any
func (m *Manager) SelectedAccount() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[m.selected]
	if !ok {
		return nil, false
	}
	view := acc.session
	return &view, true
}

// Accounts lists all stored accounts, sorted by when they were added
func (m *Manager) Accounts() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := make([]Session, 0, len(m.accounts))
	for _, acc := range m.accounts {
		sessions = append(sessions, acc.session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].AddedAt.Before(sessions[j].AddedAt)
	})
	return sessions
}

func (m *Manager) account(uuid string) (*account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[uuid]
	if !ok {
		return nil, errors.Wrap(ErrNoSuchAccount, uuid)
	}
	return acc, nil
}

func (m *Manager) yggdrasilClient(provider Provider) YggdrasilAPI {
	if provider == ProviderEly {
		return m.ely
	}
	return m.mojang
}

func (m *Manager) persist() error {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	sessions := make([]Session, 0, len(m.accounts))
	for _, acc := range m.accounts {
		sessions = append(sessions, acc.session)
	}
	m.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].AddedAt.Before(sessions[j].AddedAt)
	})
	return m.store.SaveSessions(sessions)
}

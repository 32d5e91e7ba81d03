package credentials

import (
	"testing"
	"time"

	"github.com/polarlauncher/polar/internals/auth"
)

// the tests force file mode – CI runners rarely have a usable keyring

func fileStore(t *testing.T) *Store {
	t.Helper()
	store := New(t.TempDir())
	store.NoKeyRingMode = true
	return store
}

func TestStore_ClientTokenRoundTrip(t *testing.T) {
	store := fileStore(t)

	// first run: nothing stored yet
	token, err := store.ClientToken()
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		t.Fatalf("expected no token on a first run, got %q", token)
	}

	if err := store.SaveClientToken("token-1"); err != nil {
		t.Fatal(err)
	}
	token, err = store.ClientToken()
	if err != nil {
		t.Fatal(err)
	}
	if token != "token-1" {
		t.Fatalf("expected token-1, got %q", token)
	}
}

func TestStore_SessionsRoundTrip(t *testing.T) {
	store := fileStore(t)

	sessions, err := store.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if sessions != nil {
		t.Fatal("expected no sessions on a first run")
	}

	want := []auth.Session{{
		Provider:    auth.ProviderEly,
		AccessToken: "abc",
		ClientToken: "token-1",
		Profile:     auth.Profile{UUID: "uuid1", Name: "player1"},
		Username:    "player1",
		AddedAt:     time.Now().Round(time.Second),
	}}
	if err := store.SaveSessions(want); err != nil {
		t.Fatal(err)
	}

	got, err := store.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].Provider != auth.ProviderEly {
		t.Fatalf("provider tag did not round trip: %v", got[0].Provider)
	}
	if got[0].AccessToken != "abc" || got[0].Profile.UUID != "uuid1" {
		t.Fatalf("session did not round trip: %+v", got[0])
	}
}

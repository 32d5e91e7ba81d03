package yggdrasil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/polarlauncher/polar/internals/autherr"
)

// fakeAuthServer is a minimal stateful Yggdrasil server. It knows one
// valid credential pair and tracks which access tokens it handed out.
type fakeAuthServer struct {
	clientToken string
	validTokens map[string]bool
	requests    int
}

func newFakeAuthServer() *fakeAuthServer {
	return &fakeAuthServer{
		clientToken: "client-token-1",
		validTokens: map[string]bool{},
	}
}

func (f *fakeAuthServer) handler() http.Handler {
	mux := http.NewServeMux()

	writeErr := func(w http.ResponseWriter, status int, code, message string) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{
			"error":        code,
			"errorMessage": message,
		})
	}

	mux.HandleFunc("/auth/authenticate", func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		body := authenticateBody{}
		json.NewDecoder(r.Body).Decode(&body)

		switch {
		case body.Username == "player1" && body.Password == "secret":
			f.validTokens["abc"] = true
			json.NewEncoder(w).Encode(AuthResponse{
				AccessToken:     "abc",
				ClientToken:     body.ClientToken,
				SelectedProfile: &Profile{ID: "uuid1", Name: "player1"},
			})
		case body.Username == "guarded" && body.Password == "secret":
			writeErr(w, 401, "ForbiddenOperationException", "Account protected with two factor auth.")
		case body.Username == "guarded" && body.Password == "secret:123456":
			f.validTokens["tfa"] = true
			json.NewEncoder(w).Encode(AuthResponse{
				AccessToken:     "tfa",
				ClientToken:     body.ClientToken,
				SelectedProfile: &Profile{ID: "uuid2", Name: "guarded"},
			})
		default:
			writeErr(w, 401, "ForbiddenOperationException", "Invalid credentials. Invalid username or password.")
		}
	})

	sessionReq := func(r *http.Request) (sessionBody, bool) {
		body := sessionBody{}
		json.NewDecoder(r.Body).Decode(&body)
		return body, body.ClientToken == f.clientToken && f.validTokens[body.AccessToken]
	}

	mux.HandleFunc("/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		if _, ok := sessionReq(r); !ok {
			writeErr(w, 403, "ForbiddenOperationException", "Invalid token.")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		body, ok := sessionReq(r)
		if !ok {
			writeErr(w, 403, "ForbiddenOperationException", "Invalid token.")
			return
		}
		// a refresh invalidates the old token
		delete(f.validTokens, body.AccessToken)
		f.validTokens[body.AccessToken+"-r"] = true
		json.NewEncoder(w).Encode(AuthResponse{
			AccessToken:     body.AccessToken + "-r",
			ClientToken:     body.ClientToken,
			SelectedProfile: &Profile{ID: "uuid1", Name: "player1"},
		})
	})

	mux.HandleFunc("/auth/invalidate", func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		body := sessionBody{}
		json.NewDecoder(r.Body).Decode(&body)
		// always answers 2xx, even for tokens it never issued
		delete(f.validTokens, body.AccessToken)
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func testClient(t *testing.T) (*Client, *fakeAuthServer) {
	t.Helper()
	fake := newFakeAuthServer()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := NewEly(server.Client())
	client.BaseURL = server.URL
	return client, fake
}

func TestClient_Authenticate(t *testing.T) {
	client, _ := testClient(t)

	// surrounding whitespace must be trimmed before transmission
	res, err := client.Authenticate(context.Background(), "  player1 ", "secret", "client-token-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.AccessToken != "abc" {
		t.Fatalf("expected access token abc, got %q", res.AccessToken)
	}
	if res.SelectedProfile.ID != "uuid1" || res.SelectedProfile.Name != "player1" {
		t.Fatalf("unexpected profile %+v", res.SelectedProfile)
	}
}

func TestClient_AuthenticateInvalidCredentials(t *testing.T) {
	client, _ := testClient(t)

	_, err := client.Authenticate(context.Background(), "player1", "wrong", "client-token-1", true)
	var authErr *autherr.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected an autherr.Error, got %v", err)
	}
	if authErr.Kind != autherr.KindForbidden {
		t.Fatalf("expected Forbidden, got %s", authErr.Kind)
	}
	if !authErr.InvalidCredentials {
		t.Fatal("expected the invalid credentials detail to be set")
	}
}

func TestClient_AuthenticateTwoFactor(t *testing.T) {
	client, _ := testClient(t)

	_, err := client.Authenticate(context.Background(), "guarded", "secret", "client-token-1", true)
	var authErr *autherr.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected an autherr.Error, got %v", err)
	}
	if authErr.Kind != autherr.KindTwoFactorRequired {
		t.Fatalf("expected TwoFactorRequired, got %s", authErr.Kind)
	}

	// retry with the code combined per the provider convention
	secret := client.CombineTwoFactor("secret", "123456")
	if secret != "secret:123456" {
		t.Fatalf("unexpected two factor secret %q", secret)
	}
	res, err := client.Authenticate(context.Background(), "guarded", secret, "client-token-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.AccessToken != "tfa" {
		t.Fatalf("expected access token tfa, got %q", res.AccessToken)
	}
}

func TestClient_ValidateInvalidateValidate(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	res, err := client.Authenticate(ctx, "player1", "secret", "client-token-1", true)
	if err != nil {
		t.Fatal(err)
	}

	valid, err := client.Validate(ctx, res.AccessToken, "client-token-1")
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Fatal("fresh token should be valid")
	}

	ok, err := client.Invalidate(ctx, res.AccessToken, "client-token-1")
	if err != nil || !ok {
		t.Fatalf("invalidate failed: ok=%v err=%v", ok, err)
	}

	// no resurrection
	valid, err = client.Validate(ctx, res.AccessToken, "client-token-1")
	if err != nil {
		t.Fatal(err)
	}
	if valid {
		t.Fatal("invalidated token must not validate")
	}

	// invalidating again is not an error
	ok, err = client.Invalidate(ctx, res.AccessToken, "client-token-1")
	if err != nil || !ok {
		t.Fatalf("second invalidate failed: ok=%v err=%v", ok, err)
	}
}

func TestClient_MismatchedClientToken(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	res, err := client.Authenticate(ctx, "player1", "secret", "client-token-1", true)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Refresh(ctx, res.AccessToken, "some-other-token")
	var authErr *autherr.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected an autherr.Error, got %v", err)
	}
	if authErr.Kind != autherr.KindForbidden {
		t.Fatalf("mismatched client token should map to Forbidden, got %s", authErr.Kind)
	}
}

func TestClient_StaleRefreshIsForbidden(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	res, err := client.Authenticate(ctx, "player1", "secret", "client-token-1", true)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Refresh(ctx, res.AccessToken, "client-token-1"); err != nil {
		t.Fatal(err)
	}

	// the same stale token again: a credential failure, not a
	// transport failure
	_, err = client.Refresh(ctx, res.AccessToken, "client-token-1")
	var authErr *autherr.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected an autherr.Error, got %v", err)
	}
	if authErr.Kind != autherr.KindForbidden {
		t.Fatalf("expected Forbidden, got %s", authErr.Kind)
	}
}

func TestClient_TransportFaultIsUnknown(t *testing.T) {
	fake := newFakeAuthServer()
	server := httptest.NewServer(fake.handler())
	client := NewEly(server.Client())
	client.BaseURL = server.URL
	// an unreachable provider degrades to Unknown, never to a raw error
	server.Close()

	_, err := client.Authenticate(context.Background(), "player1", "secret", "client-token-1", true)
	var authErr *autherr.Error
	if !errors.As(err, &authErr) {
		t.Fatalf("expected an autherr.Error, got %v", err)
	}
	if authErr.Kind != autherr.KindUnknown {
		t.Fatalf("expected Unknown, got %s", authErr.Kind)
	}

	if _, err := client.Validate(context.Background(), "abc", "client-token-1"); !errors.As(err, &authErr) {
		t.Fatalf("expected an autherr.Error, got %v", err)
	}
	if authErr.Kind != autherr.KindUnknown {
		t.Fatalf("expected Unknown, got %s", authErr.Kind)
	}
}

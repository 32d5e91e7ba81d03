// Package yggdrasil is a client for Yggdrasil compatible authentication
// servers. Mojang-style servers and ely.by speak the same protocol, they
// only differ in base URL, error message texts and the convention used
// to retry a login with a two factor code – all of which are plain
// configuration on the Client.
package yggdrasil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/polarlauncher/polar/internals/autherr"
)

const (
	// MojangAuthServer is the default Mojang-compatible endpoint
	MojangAuthServer = "https://authserver.mojang.com"
	// ElyAuthServer is the ely.by endpoint
	ElyAuthServer = "https://authserver.ely.by"
)

// Client talks to one Yggdrasil compatible auth server. All four session
// operations return a structured result – a transport fault never
// escapes as a raw error, it comes back as autherr.KindUnknown.
type Client struct {
	// HTTP is the internal http client
	HTTP *http.Client
	// BaseURL is the auth server, without the /auth suffix
	BaseURL string
	// Codes holds the provider specific error vocabulary
	Codes ErrorTable
	// TwoFactorSecret combines the original password with a one time
	// code for the single permitted two factor retry. The convention is
	// per provider, not a protocol constant.
	TwoFactorSecret func(password, code string) string
}

// NewMojang returns a client for the Mojang-compatible endpoint
func NewMojang(client *http.Client) *Client {
	return newClient(client, MojangAuthServer)
}

// NewEly returns a client for ely.by
func NewEly(client *http.Client) *Client {
	return newClient(client, ElyAuthServer)
}

func newClient(client *http.Client, baseURL string) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		HTTP:    client,
		BaseURL: baseURL,
		Codes:   DefaultErrorTable(),
		// both reference servers expect "password:code"
		TwoFactorSecret: func(password, code string) string {
			return password + ":" + code
		},
	}
}

// Authenticate exchanges username/password credentials for a session.
// The username is trimmed before transmission, the password is passed
// through untouched (it may already encode a two factor code).
func (c *Client) Authenticate(ctx context.Context, username, password, clientToken string, requestUser bool) (*AuthResponse, error) {
	payload := authenticateBody{
		Agent:       agent{Name: "Minecraft", Version: 1},
		Username:    strings.TrimSpace(username),
		Password:    password,
		ClientToken: clientToken,
		RequestUser: requestUser,
	}

	res, err := c.postJSON(ctx, c.BaseURL+"/auth/authenticate", payload)
	if err != nil {
		return nil, autherr.Unknown(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, c.normalizeResponse(res)
	}

	authRes := AuthResponse{}
	if err := parseJSON(res, &authRes); err != nil {
		return nil, autherr.Unknown(err)
	}
	return &authRes, nil
}

// Validate checks whether an access token is still usable. An invalid
// token is an expected outcome, not an error: any non 2xx response means
// "not valid". Only transport faults return an error.
func (c *Client) Validate(ctx context.Context, accessToken, clientToken string) (bool, error) {
	res, err := c.postJSON(ctx, c.BaseURL+"/auth/validate", sessionBody{accessToken, clientToken})
	if err != nil {
		return false, autherr.Unknown(err)
	}
	defer res.Body.Close()

	return res.StatusCode >= 200 && res.StatusCode < 300, nil
}

// Refresh trades a (possibly stale) access token for a fresh one bound
// to the same account
func (c *Client) Refresh(ctx context.Context, accessToken, clientToken string) (*AuthResponse, error) {
	res, err := c.postJSON(ctx, c.BaseURL+"/auth/refresh", sessionBody{accessToken, clientToken})
	if err != nil {
		return nil, autherr.Unknown(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, c.normalizeResponse(res)
	}

	authRes := AuthResponse{}
	if err := parseJSON(res, &authRes); err != nil {
		return nil, autherr.Unknown(err)
	}
	return &authRes, nil
}

// Invalidate revokes an access token. Invalidating a token that is
// already invalid is fine – the call is idempotent and only transport
// faults surface as errors.
func (c *Client) Invalidate(ctx context.Context, accessToken, clientToken string) (bool, error) {
	res, err := c.postJSON(ctx, c.BaseURL+"/auth/invalidate", sessionBody{accessToken, clientToken})
	if err != nil {
		return false, autherr.Unknown(err)
	}
	defer res.Body.Close()

	return res.StatusCode >= 200 && res.StatusCode < 300, nil
}

// CombineTwoFactor applies the provider's two factor retry convention
func (c *Client) CombineTwoFactor(password, code string) string {
	return c.TwoFactorSecret(password, code)
}

// postJSON posts json
func (c *Client) postJSON(ctx context.Context, url string, data interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.HTTP.Do(req)
}

func parseJSON(res *http.Response, i interface{}) error {
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, i)
}

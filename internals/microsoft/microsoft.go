// Package microsoft implements the Microsoft account chain: an oauth2
// browser login followed by Xbox Live, XSTS and Minecraft services token
// exchanges. The browser flow UI itself is not this package's concern –
// it only opens the system browser and waits on a loopback listener.
package microsoft

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	xblAuthenticateURL   = "https://user.auth.xboxlive.com/user/authenticate"
	xblXstsAuthorizeURL  = "https://xsts.auth.xboxlive.com/xsts/authorize"
	mcLoginWithXboxURL   = "https://api.minecraftservices.com/authentication/login_with_xbox"
	mcProfileURL         = "https://api.minecraftservices.com/minecraft/profile"
	loopbackListenerAddr = "localhost:27893"
)

// Client drives the full Microsoft → Minecraft login chain
type Client struct {
	http *http.Client
	// xblClient is a separate client because the Xbox Live endpoints
	// require TLS renegotiation
	// https://stackoverflow.com/questions/57420833/tls-no-renegotiation-error-on-http-request
	xblClient *http.Client
	config    *oauth2.Config
}

// Credentials is everything the launcher needs to keep a Microsoft
// backed account usable: the oauth2 token (for silent refresh), the
// Minecraft services token and the game profile.
type Credentials struct {
	MicrosoftAuth    oauth2.Token        `json:"microsoftAuth"`
	MinecraftAuth    *XboxLoginResponse  `json:"minecraftAuth"`
	MinecraftProfile *GetProfileResponse `json:"minecraftProfile"`
	ExpiresAt        time.Time           `json:"expiresAt"`
}

func (c *Credentials) GetAccessToken() string { return c.MinecraftAuth.AccessToken }
func (c *Credentials) GetPlayerName() string  { return c.MinecraftProfile.Name }
func (c *Credentials) GetUUID() string        { return c.MinecraftProfile.ID }

// IsExpired reports whether the Minecraft token needs to be refreshed.
// A minute of headroom covers clock skew.
func (c *Credentials) IsExpired() bool {
	return c.ExpiresAt.Before(time.Now().Add(time.Minute))
}

// New returns a Client for the given Azure application. Sensible scope
// and endpoint defaults are filled in when the config leaves them empty.
func New(httpClient *http.Client, config *oauth2.Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// shallow copy so the caller's client is left untouched
	xblClient := *httpClient
	xblClient.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{Renegotiation: tls.RenegotiateOnceAsClient},
	}

	if config.Scopes == nil {
		config.Scopes = []string{"XboxLive.signin", "offline_access"}
	}
	if config.Endpoint.AuthURL == "" {
		config.Endpoint = microsoft.AzureADEndpoint("consumers")
	}
	if config.RedirectURL == "" {
		config.RedirectURL = "http://" + loopbackListenerAddr
	}

	return &Client{
		http:      httpClient,
		xblClient: &xblClient,
		config:    config,
	}
}

// Login runs the interactive browser flow and then the token chain
func (c *Client) Login(ctx context.Context) (*Credentials, error) {
	token, err := c.oauth(ctx)
	if err != nil {
		return nil, err
	}
	return c.minecraftCredentials(ctx, token)
}

// EnsureCredentials returns usable credentials, silently refreshing the
// whole chain when the Minecraft token has expired. The oauth2
// TokenSource takes care of refreshing the Microsoft token itself.
func (c *Client) EnsureCredentials(ctx context.Context, creds *Credentials) (*Credentials, error) {
	if creds == nil {
		return nil, fmt.Errorf("no stored microsoft credentials")
	}
	if !creds.IsExpired() {
		return creds, nil
	}
	return c.minecraftCredentials(ctx, &creds.MicrosoftAuth)
}

// minecraftCredentials walks the XBL → XSTS → Minecraft chain
func (c *Client) minecraftCredentials(ctx context.Context, token *oauth2.Token) (*Credentials, error) {
	newToken, err := c.config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("microsoft token refresh failed: %w", err)
	}

	xblAuth, err := c.xblAuth(ctx, newToken.AccessToken)
	if err != nil {
		return nil, err
	}

	xstsAuth, err := c.xstsAuth(ctx, xblAuth.Token)
	if err != nil {
		return nil, err
	}
	if len(xstsAuth.DisplayClaims.Xui) == 0 {
		return nil, fmt.Errorf("XBL auth failed: no XUI claim")
	}
	userHash := xstsAuth.DisplayClaims.Xui[0].Uhs

	minecraftAuth, err := c.loginWithXbox(ctx, userHash, xstsAuth.Token)
	if err != nil {
		return nil, err
	}

	profile, err := c.getProfile(ctx, minecraftAuth.AccessToken)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		MicrosoftAuth:    *newToken,
		MinecraftAuth:    minecraftAuth,
		MinecraftProfile: profile,
		ExpiresAt:        time.Now().Add(time.Duration(minecraftAuth.ExpiresIn) * time.Second),
	}, nil
}

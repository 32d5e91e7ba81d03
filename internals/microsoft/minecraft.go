package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// XboxLoginResponse is the Minecraft services session
type XboxLoginResponse struct {
	// Username is not the Minecraft username!
	Username string `json:"username"`
	// AccessToken should be used for all future requests
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// GetProfileResponse is the game profile of the logged in player
type GetProfileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Skins []struct {
		ID      string `json:"id"`
		State   string `json:"state"`
		URL     string `json:"url"`
		Variant string `json:"variant"`
		Alias   string `json:"alias"`
	} `json:"skins"`
}

// loginWithXbox exchanges the XSTS token for a Minecraft services token
func (c *Client) loginWithXbox(ctx context.Context, userHash, xstsToken string) (*XboxLoginResponse, error) {
	body := struct {
		IdentityToken string `json:"identityToken"`
	}{
		IdentityToken: fmt.Sprintf("x=%s;%s", userHash, xstsToken),
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", mcLoginWithXboxURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("minecraft login failed with status %d (%s)", res.StatusCode, res.Status)
	}

	authRes := XboxLoginResponse{}
	if err := json.NewDecoder(res.Body).Decode(&authRes); err != nil {
		return nil, err
	}
	return &authRes, nil
}

// getProfile fetches the game profile. This also doubles as the
// ownership check: players without the game have no profile.
func (c *Client) getProfile(ctx context.Context, accessToken string) (*GetProfileResponse, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("no token provided")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", mcProfileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching the minecraft profile failed with status %d", res.StatusCode)
	}

	var profile GetProfileResponse
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

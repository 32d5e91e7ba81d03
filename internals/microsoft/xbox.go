package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type xblAuthResponse struct {
	IssueInstant  time.Time `json:"IssueInstant"`
	NotAfter      time.Time `json:"NotAfter"`
	Token         string    `json:"Token"`
	DisplayClaims struct {
		Xui []struct {
			Uhs string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

type xblErrorResponse struct {
	Identity string `json:"Identity"`
	XErr     int64  `json:"XErr"`
	Message  string `json:"Message"`
	Redirect string `json:"Redirect"`
}

func (x *xblErrorResponse) Error() string {
	if x.Message != "" {
		return fmt.Sprintf("%s (%d)", x.Message, x.XErr)
	}
	return fmt.Sprintf("error code: %d", x.XErr)
}

type xblAuthBody struct {
	Properties   map[string]interface{} `json:"Properties"`
	RelyingParty string                 `json:"RelyingParty"`
	TokenType    string                 `json:"TokenType"`
}

// xblAuth exchanges the Microsoft access token for an Xbox Live token
func (c *Client) xblAuth(ctx context.Context, accessToken string) (*xblAuthResponse, error) {
	body := xblAuthBody{
		Properties: map[string]interface{}{
			"AuthMethod": "RPS",
			"SiteName":   "user.auth.xboxlive.com",
			"RpsTicket":  "d=" + accessToken,
		},
		RelyingParty: "http://auth.xboxlive.com",
		TokenType:    "JWT",
	}
	return c.postXbl(ctx, xblAuthenticateURL, body, "XBL auth")
}

// xstsAuth exchanges the Xbox Live token for an XSTS token scoped to the
// Minecraft services
func (c *Client) xstsAuth(ctx context.Context, xblToken string) (*xblAuthResponse, error) {
	body := xblAuthBody{
		Properties: map[string]interface{}{
			"SandboxId":  "RETAIL",
			"UserTokens": []string{xblToken},
		},
		RelyingParty: "rp://api.minecraftservices.com/",
		TokenType:    "JWT",
	}
	return c.postXbl(ctx, xblXstsAuthorizeURL, body, "XBL XSTS auth")
}

func (c *Client) postXbl(ctx context.Context, url string, body interface{}, what string) (*xblAuthResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.xblClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errorResponse := &xblErrorResponse{}
		if err := json.NewDecoder(res.Body).Decode(errorResponse); err == nil {
			return nil, fmt.Errorf("%s failed: %w", what, errorResponse)
		}
		return nil, fmt.Errorf("%s failed with status %d (%s)", what, res.StatusCode, res.Status)
	}

	authResponse := xblAuthResponse{}
	if err := json.NewDecoder(res.Body).Decode(&authResponse); err != nil {
		return nil, err
	}
	return &authResponse, nil
}

package yggdrasil

// AuthResponse is the payload returned by a successful authenticate or
// refresh call
type AuthResponse struct {
	AccessToken     string   `json:"accessToken"`
	ClientToken     string   `json:"clientToken"`
	SelectedProfile *Profile `json:"selectedProfile"`
	User            *User    `json:"user,omitempty"`
}

func (a *AuthResponse) GetAccessToken() string { return a.AccessToken }
func (a *AuthResponse) GetPlayerName() string  { return a.SelectedProfile.Name }
func (a *AuthResponse) GetUUID() string        { return a.SelectedProfile.ID }

// Profile is the game profile attached to a session
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the optional account level info returned when authenticate is
// called with requestUser set
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type agent struct {
	Name    string `json:"name"`
	Version uint8  `json:"version"`
}

type authenticateBody struct {
	Agent       agent  `json:"agent"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	ClientToken string `json:"clientToken"`
	RequestUser bool   `json:"requestUser"`
}

type sessionBody struct {
	AccessToken string `json:"accessToken"`
	ClientToken string `json:"clientToken"`
}

// apiError is the error body every Yggdrasil compatible server returns
// on a non 2xx response
type apiError struct {
	ErrorCode    string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
	Cause        string `json:"cause,omitempty"`
}

func (e apiError) Error() string {
	return e.ErrorMessage
}

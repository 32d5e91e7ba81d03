package yggdrasil

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/polarlauncher/polar/internals/autherr"
)

// Yggdrasil error codes shared by Mojang-style servers and ely.by
const (
	codeIllegalArgument    = "IllegalArgumentException"
	codeForbiddenOperation = "ForbiddenOperationException"
)

// ErrorTable is the per provider error vocabulary. The two factor signal
// hides behind the generic forbidden code and is only recognizable by
// its exact message text, so the texts are data here instead of
// constants – a provider updating its wording is a config change, not a
// code change.
type ErrorTable struct {
	// ForbiddenCode is the error code used for credential failures
	ForbiddenCode string
	// TwoFactorMessages are the exact errorMessage texts signalling that
	// the account is protected with two factor auth
	TwoFactorMessages []string
	// InvalidCredentialMessages are the exact errorMessage texts for a
	// wrong username or password
	InvalidCredentialMessages []string
}

// DefaultErrorTable matches the vocabulary of authserver.ely.by, which
// is a superset of what Mojang-compatible servers emit
func DefaultErrorTable() ErrorTable {
	return ErrorTable{
		ForbiddenCode: codeForbiddenOperation,
		TwoFactorMessages: []string{
			"Account protected with two factor auth.",
		},
		InvalidCredentialMessages: []string{
			"Invalid credentials. Invalid username or password.",
			"Invalid credentials. Invalid email or password.",
		},
	}
}

// Normalize collapses a raw provider response into the launcher wide
// error taxonomy. Pure: it never looks at anything but its inputs.
//
// Priority order matters. The two factor signal and the invalid
// credential case both arrive as 401 + the forbidden code and are only
// told apart by message text.
func (t ErrorTable) Normalize(status int, body []byte) *autherr.Error {
	raw := apiError{}
	if err := json.Unmarshal(body, &raw); err != nil || raw.ErrorCode == "" {
		return &autherr.Error{Kind: autherr.KindUnknown, Raw: body}
	}

	if status == http.StatusUnauthorized && raw.ErrorCode == t.ForbiddenCode {
		if containsString(t.TwoFactorMessages, raw.ErrorMessage) {
			return &autherr.Error{
				Kind:    autherr.KindTwoFactorRequired,
				Message: raw.ErrorMessage,
				Raw:     body,
			}
		}
		if containsString(t.InvalidCredentialMessages, raw.ErrorMessage) {
			return &autherr.Error{
				Kind:               autherr.KindForbidden,
				InvalidCredentials: true,
				Message:            raw.ErrorMessage,
				Raw:                body,
			}
		}
	}

	switch raw.ErrorCode {
	case codeIllegalArgument:
		return &autherr.Error{Kind: autherr.KindIllegalArgument, Message: raw.ErrorMessage, Raw: body}
	case t.ForbiddenCode:
		return &autherr.Error{Kind: autherr.KindForbidden, Message: raw.ErrorMessage, Raw: body}
	default:
		return &autherr.Error{Kind: autherr.KindUnknown, Message: raw.ErrorMessage, Raw: body}
	}
}

// normalizeResponse reads and normalizes an error response body
func (c *Client) normalizeResponse(res *http.Response) *autherr.Error {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return autherr.Unknown(err)
	}
	return c.Codes.Normalize(res.StatusCode, body)
}

func containsString(list []string, s string) bool {
	for _, entry := range list {
		if entry == s {
			return true
		}
	}
	return false
}

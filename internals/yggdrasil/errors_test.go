package yggdrasil

import (
	"testing"

	"github.com/polarlauncher/polar/internals/autherr"
)

func TestNormalize(t *testing.T) {
	table := DefaultErrorTable()

	cases := []struct {
		name   string
		status int
		body   string
		want   autherr.Kind
	}{
		{
			name:   "two factor",
			status: 401,
			body:   `{"error":"ForbiddenOperationException","errorMessage":"Account protected with two factor auth."}`,
			want:   autherr.KindTwoFactorRequired,
		},
		{
			name:   "invalid credentials",
			status: 401,
			body:   `{"error":"ForbiddenOperationException","errorMessage":"Invalid credentials. Invalid username or password."}`,
			want:   autherr.KindForbidden,
		},
		{
			name:   "invalid credentials email wording",
			status: 401,
			body:   `{"error":"ForbiddenOperationException","errorMessage":"Invalid credentials. Invalid email or password."}`,
			want:   autherr.KindForbidden,
		},
		{
			name:   "generic forbidden",
			status: 403,
			body:   `{"error":"ForbiddenOperationException","errorMessage":"Invalid token."}`,
			want:   autherr.KindForbidden,
		},
		{
			name:   "illegal argument",
			status: 400,
			body:   `{"error":"IllegalArgumentException","errorMessage":"credentials can not be null."}`,
			want:   autherr.KindIllegalArgument,
		},
		{
			name:   "unrecognized code",
			status: 500,
			body:   `{"error":"SomethingNewException","errorMessage":"beats me"}`,
			want:   autherr.KindUnknown,
		},
		{
			name:   "unparseable body",
			status: 502,
			body:   `<html>bad gateway</html>`,
			want:   autherr.KindUnknown,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := table.Normalize(c.status, []byte(c.body))
			if got.Kind != c.want {
				t.Fatalf("expected %s, got %s", c.want, got.Kind)
			}
		})
	}
}

// the two factor wording must never be mistaken for invalid credentials
// and vice versa – both arrive as 401 + the same error code
func TestNormalizePriority(t *testing.T) {
	table := DefaultErrorTable()

	twoFactor := table.Normalize(401, []byte(`{"error":"ForbiddenOperationException","errorMessage":"Account protected with two factor auth."}`))
	if twoFactor.Kind == autherr.KindForbidden {
		t.Fatal("two factor signal was classified as Forbidden")
	}

	invalid := table.Normalize(401, []byte(`{"error":"ForbiddenOperationException","errorMessage":"Invalid credentials. Invalid username or password."}`))
	if invalid.Kind == autherr.KindTwoFactorRequired {
		t.Fatal("invalid credentials were classified as TwoFactorRequired")
	}
	if !invalid.InvalidCredentials {
		t.Fatal("invalid credentials detail missing")
	}
}

package microsoft

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/dchest/uniuri"
	"golang.org/x/oauth2"
)

// oauth performs the interactive authorization code flow with PKCE. It
// opens the system browser and waits for the redirect on a loopback
// listener. Cancelling ctx shuts the listener down.
func (c *Client) oauth(ctx context.Context) (*oauth2.Token, error) {
	state := uniuri.New()
	pkceVerifier := uniuri.NewLen(128)
	pkceHash := sha256.Sum256([]byte(pkceVerifier))
	pkceChallenge := base64.RawURLEncoding.EncodeToString(pkceHash[:])

	pkceMethod := oauth2.SetAuthURLParam("code_challenge_method", "S256")
	pkceValue := oauth2.SetAuthURLParam("code_challenge", pkceChallenge)
	url := c.config.AuthCodeURL(state, pkceMethod, pkceValue)

	code := ""
	var responseErr error

	mux := http.NewServeMux()
	server := &http.Server{Addr: loopbackListenerAddr, Handler: mux}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<!DOCTYPE html>
<html lang="en">
<head><script>window.close();</script></head>
<body>
	<h1>Login attempt done.</h1>
	<div>You can close this window now</div>
</body>
</html>`)
		query := r.URL.Query()
		resState := query.Get("state")
		code = query.Get("code")
		switch {
		case resState != state:
			responseErr = errors.New("request was intercepted – try logging in again")
		case code == "":
			responseErr = errors.New("web login failed with " + query.Get("error"))
		}
		go server.Shutdown(context.Background())
	})

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	if err := openBrowser(url); err != nil {
		fmt.Println("Could not open a browser. Please open this URL manually:")
		fmt.Println("  " + url)
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if responseErr != nil {
		return nil, responseErr
	}
	if code == "" {
		return nil, errors.New("login window was closed before finishing")
	}

	return c.config.Exchange(
		ctx,
		code,
		pkceMethod,
		oauth2.SetAuthURLParam("code_verifier", pkceVerifier),
	)
}

// openBrowser opens the given url in the default system browser
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return fmt.Errorf("unsupported platform")
	}
}

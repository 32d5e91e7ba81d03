// Package skins resolves display images (head, body, full skin) for
// launcher accounts. Every provider gets an ordered list of fallback
// strategies – provider native lookup first, then a generic head
// renderer, then the built-in default – tried in sequence with a
// bounded attempt count.
package skins

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/polarlauncher/polar/internals/auth"
)

// steveUUID is the uuid of the default skin shown when everything else
// fails
const steveUUID = "c06f89064c8a49119c29ea1dbd1aab82"

// RenderType selects how the skin is rendered
type RenderType string

const (
	RenderHead   RenderType = "head"
	RenderBody   RenderType = "body"
	RenderAvatar RenderType = "avatar"
)

// Resolver turns an account into a skin image URL
type Resolver struct {
	// HTTP is used for provider native lookups
	HTTP *http.Client
	// ElySkinSystemURL is the ely.by skin system endpoint
	ElySkinSystemURL string
	// HeadRendererURL is the generic uuid/name based render service
	HeadRendererURL string
}

// New returns a Resolver with the default endpoints
func New(client *http.Client) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{
		HTTP:             client,
		ElySkinSystemURL: "http://skinsystem.ely.by",
		HeadRendererURL:  "https://mc-heads.net",
	}
}

// strategy is one rung of the fallback ladder. It either produces a URL
// or fails, in which case the next rung is tried.
type strategy func(ctx context.Context) (string, error)

// Resolve returns a skin image URL for the session. It never fails –
// the last rung of every ladder is the built-in default skin.
func (r *Resolver) Resolve(ctx context.Context, session *auth.Session, render RenderType, size int) string {
	for _, try := range r.ladder(session, render, size) {
		url, err := try(ctx)
		if err == nil && url != "" {
			return url
		}
	}
	return r.renderURL(steveUUID, render, size)
}

// ladder builds the ordered, bounded strategy list for the account's
// provider
func (r *Resolver) ladder(session *auth.Session, render RenderType, size int) []strategy {
	if session == nil {
		return nil
	}

	// the render service accepts either a uuid or a player name
	renderKey := session.Profile.UUID
	if renderKey == "" {
		renderKey = session.Profile.Name
	}
	if renderKey == "" {
		return nil
	}

	switch session.Provider {
	case auth.ProviderEly:
		ladder := []strategy{}
		if session.Username != "" {
			// ely.by indexes skins by name, not uuid
			username := session.Username
			ladder = append(ladder, func(ctx context.Context) (string, error) {
				return r.elySkinURL(ctx, username)
			})
		}
		ladder = append(ladder, func(ctx context.Context) (string, error) {
			return r.renderURL(renderKey, render, size), nil
		})
		return ladder
	case auth.ProviderMojang, auth.ProviderMicrosoft:
		return []strategy{
			func(ctx context.Context) (string, error) {
				return r.renderURL(renderKey, render, size), nil
			},
		}
	default:
		return nil
	}
}

// renderURL builds a render service URL. Pure string construction, this
// rung cannot fail.
func (r *Resolver) renderURL(uuid string, render RenderType, size int) string {
	switch render {
	case RenderBody:
		return fmt.Sprintf("%s/body/%s/%d", r.HeadRendererURL, uuid, size)
	case RenderAvatar:
		return fmt.Sprintf("%s/body/%s/right", r.HeadRendererURL, uuid)
	default:
		return fmt.Sprintf("%s/head/%s/%d", r.HeadRendererURL, uuid, size)
	}
}

// elyProfile is the skin system profile answer. The interesting part
// hides base64 encoded inside the "textures" property.
type elyProfile struct {
	Properties []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"properties"`
}

type elyTextures struct {
	Textures struct {
		Skin struct {
			URL string `json:"url"`
		} `json:"SKIN"`
	} `json:"textures"`
}

// elySkinURL asks the ely.by skin system for the skin texture of a
// player name
func (r *Resolver) elySkinURL(ctx context.Context, username string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.ElySkinSystemURL+"/profile/"+username, nil)
	if err != nil {
		return "", err
	}

	res, err := r.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("skin system answered with status %d", res.StatusCode)
	}

	profile := elyProfile{}
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		return "", err
	}

	for _, prop := range profile.Properties {
		if prop.Name != "textures" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(prop.Value)
		if err != nil {
			return "", err
		}
		textures := elyTextures{}
		if err := json.Unmarshal(decoded, &textures); err != nil {
			return "", err
		}
		if textures.Textures.Skin.URL == "" {
			return "", fmt.Errorf("profile has no skin texture")
		}
		return textures.Textures.Skin.URL, nil
	}

	return "", fmt.Errorf("profile has no textures property")
}

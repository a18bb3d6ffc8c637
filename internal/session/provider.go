package session

import (
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"

	"chronicle/internal/models"
)

// Provider describes an external identity provider the store can hand a
// signup flow to. The handshake is mocked: after the configured delay the
// flow resolves with a synthesized provider-keyed user.
type Provider struct {
	Name         string
	AuthEndpoint string
	ClientID     string
	RedirectURI  string
	Scope        string
	ResponseType string
}

// GoogleProvider returns the google provider definition.
func GoogleProvider(clientID, redirectURI string) Provider {
	return Provider{
		Name:         "google",
		AuthEndpoint: "https://accounts.google.com/o/oauth2/v2/auth",
		ClientID:     clientID,
		RedirectURI:  redirectURI,
		Scope:        "profile email",
		ResponseType: "token",
	}
}

// GithubProvider returns the github provider definition.
func GithubProvider(clientID, redirectURI string) Provider {
	return Provider{
		Name:         "github",
		AuthEndpoint: "https://github.com/login/oauth/authorize",
		ClientID:     clientID,
		RedirectURI:  redirectURI,
		Scope:        "user:email",
	}
}

// AuthURL builds the provider's authorization URL.
func (p Provider) AuthURL() string {
	params := url.Values{}
	params.Set("client_id", p.ClientID)
	params.Set("redirect_uri", p.RedirectURI)
	params.Set("scope", p.Scope)
	if p.ResponseType != "" {
		params.Set("response_type", p.ResponseType)
	}
	return p.AuthEndpoint + "?" + params.Encode()
}

// DisplayName returns the provider name with a leading capital, as shown in
// synthesized account names.
func (p Provider) DisplayName() string {
	if p.Name == "" {
		return ""
	}
	return strings.ToUpper(p.Name[:1]) + p.Name[1:]
}

// SyntheticUser fabricates the account a completed mock handshake resolves
// with. The id is a short random base36 token keying the email and avatar.
func (p Provider) SyntheticUser() *models.User {
	id := randomToken()
	return &models.User{
		ID:     id,
		Name:   p.DisplayName() + " User",
		Email:  fmt.Sprintf("user_%s@%s.com", id, p.Name),
		Role:   models.RoleUser,
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s_%s", p.Name, id),
	}
}

func randomToken() string {
	token := strconv.FormatUint(rand.Uint64(), 36)
	if len(token) > 9 {
		token = token[:9]
	}
	return token
}

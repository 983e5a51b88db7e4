package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidCredentials is returned for every failed login attempt.
// Callers must not learn whether the upstream rejected the credentials,
// was unreachable or answered garbage.
var ErrInvalidCredentials = errors.New("invalid credentials")

// An Upstream checks credentials and returns an access token.
type Upstream interface {
	Authenticate(username, password string) (string, error)
}

// DOT authenticates against the DOT identity service
// using the OAuth2 password grant.
type DOT struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	client       *http.Client
}

func NewDOT(tokenURL, clientID, clientSecret string) *DOT {
	return &DOT{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (d *DOT) Authenticate(username, password string) (string, error) {

	resp, err := d.client.PostForm(d.TokenURL, url.Values{
		"grant_type":    {"password"},
		"username":      {username},
		"password":      {password},
		"client_id":     {d.ClientID},
		"client_secret": {d.ClientSecret},
	})
	if err != nil {
		return "", ErrInvalidCredentials
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrInvalidCredentials
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", ErrInvalidCredentials
	}
	if strings.TrimSpace(body.AccessToken) == "" {
		return "", ErrInvalidCredentials
	}

	return body.AccessToken, nil
}

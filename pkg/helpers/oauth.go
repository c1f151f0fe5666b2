package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/whispr-app/whispr/config"
)

// Profile is the subset of a provider profile the auth core needs: the
// provider-scoped id and, when the provider shares it, the account email.
type Profile struct {
	ID    string
	Email string
}

var ErrUnknownProvider = errors.New("unknown oauth provider")

// OAuth wraps the configured federated providers. The redirect/exchange
// mechanics are provider glue; only the resulting Profile enters the core.
type OAuth struct {
	google   *oauth2.Config
	facebook *oauth2.Config
}

func NewOAuth(cfg *config.Config) *OAuth {
	return &OAuth{
		google: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.CallbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		facebook: &oauth2.Config{
			ClientID:     cfg.Facebook.ClientID,
			ClientSecret: cfg.Facebook.ClientSecret,
			RedirectURL:  cfg.Facebook.CallbackURL,
			Scopes:       []string{"public_profile", "email"},
			Endpoint:     facebook.Endpoint,
		},
	}
}

func (o *OAuth) conf(provider string) (*oauth2.Config, error) {
	switch provider {
	case "google":
		return o.google, nil
	case "facebook":
		return o.facebook, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// AuthCodeURL returns the provider consent URL for the given state nonce.
func (o *OAuth) AuthCodeURL(provider, state string) (string, error) {
	conf, err := o.conf(provider)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// FetchProfile exchanges the callback code and loads the provider profile.
func (o *OAuth) FetchProfile(ctx context.Context, provider, code string) (Profile, error) {
	conf, err := o.conf(provider)
	if err != nil {
		return Profile{}, err
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("code exchange failed: %w", err)
	}
	switch provider {
	case "google":
		return fetchGoogleProfile(ctx, conf, tok)
	default:
		return fetchFacebookProfile(ctx, conf, tok)
	}
}

func fetchGoogleProfile(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (Profile, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
	if err != nil {
		return Profile{}, err
	}
	ui, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Profile{}, err
	}
	return Profile{ID: ui.Id, Email: ui.Email}, nil
}

func fetchFacebookProfile(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token) (Profile, error) {
	client := conf.Client(ctx, tok)
	resp, err := client.Get("https://graph.facebook.com/v19.0/me?fields=id,email")
	if err != nil {
		return Profile{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("facebook profile request returned %s", resp.Status)
	}
	var body struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Profile{}, err
	}
	return Profile{ID: body.ID, Email: body.Email}, nil
}

package federation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"authcore/internal/domain/model"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGoogle      = "google"
	googleUserInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	maxUserInfoBodySize = 1 << 20
)

// OAuthクライアントの登録情報
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// 認可コードを交換し、userinfoから本人情報を取る
type GoogleAdapter struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// テストではローカルサーバーに向ける
type Option func(*GoogleAdapter)

func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(a *GoogleAdapter) { a.oauth.Endpoint = ep }
}

func WithUserInfoURL(u string) Option {
	return func(a *GoogleAdapter) { a.userInfoURL = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *GoogleAdapter) { a.httpClient = c }
}

func NewGoogleAdapter(cfg GoogleConfig, opts ...Option) *GoogleAdapter {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}

	a := &GoogleAdapter{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       scopes,
		},
		userInfoURL: googleUserInfoURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// コードやトークンを拒否されたらErrExternalIdentityRejected。
// それ以外のエラーはIdP側か通信の障害
func (a *GoogleAdapter) Exchange(ctx context.Context, code string) (model.ExternalIdentity, error) {
	if a.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	tok, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
			return model.ExternalIdentity{}, fmt.Errorf("%w: %s", model.ErrExternalIdentityRejected, re.ErrorCode)
		}
		return model.ExternalIdentity{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return model.ExternalIdentity{}, err
	}
	resp, err := a.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return model.ExternalIdentity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.ExternalIdentity{}, fmt.Errorf("%w: userinfo status %d", model.ErrExternalIdentityRejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return model.ExternalIdentity{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBodySize)).Decode(&info); err != nil {
		return model.ExternalIdentity{}, fmt.Errorf("decode userinfo: %w", err)
	}

	return model.ExternalIdentity{
		Provider:      ProviderGoogle,
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		DisplayName:   info.Name,
		AvatarURL:     info.Picture,
	}, nil
}

// Google未設定時。どのコードも拒否する
type Disabled struct{}

func (Disabled) Exchange(context.Context, string) (model.ExternalIdentity, error) {
	return model.ExternalIdentity{}, fmt.Errorf("%w: federated sign-in is not configured", model.ErrExternalIdentityRejected)
}

package apiclient

import (
	"context"
	"net/http"

	"github.com/jrsteele09/baysawarr-web/navigation"
	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

type contextKey string

const credentialExchangeKey contextKey = "credential_exchange"

// withCredentialExchange marks a request whose 401 means "wrong credentials" rather
// than "the current session is no longer valid".
func withCredentialExchange(ctx context.Context) context.Context {
	return context.WithValue(ctx, credentialExchangeKey, true)
}

func isCredentialExchange(ctx context.Context) bool {
	v, _ := ctx.Value(credentialExchangeKey).(bool)
	return v
}

// sessionTransport attaches the persisted bearer token to every request and treats
// any 401 as the end of the session.
type sessionTransport struct {
	base         http.RoundTripper
	store        storage.Store
	nav          navigation.Navigator
	logger       zerolog.Logger
	onInvalidate func(path string)
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	outgoing := req.Clone(ctx)
	if token, ok := storage.LoadToken(ctx, t.store); ok {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(outgoing)
	}

	resp, err := t.base.RoundTrip(outgoing)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !isCredentialExchange(ctx) {
		t.invalidate(ctx, req.URL.Path)
	}
	return resp, nil
}

// invalidate performs the same cleanup as an explicit logout, then sends the
// visitor to the login page. The caller still receives the 401.
func (t *sessionTransport) invalidate(ctx context.Context, path string) {
	if err := storage.ClearSession(ctx, t.store); err != nil {
		t.logger.Error().Err(err).Str("path", path).Msg("Failed to clear session after 401")
	}
	t.logger.Info().Str("path", path).Msg("Session invalidated by API")
	if t.onInvalidate != nil {
		t.onInvalidate(path)
	}
	t.nav.Reset(ctx, navigation.Login)
}

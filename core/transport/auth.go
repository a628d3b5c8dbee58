package transport

import "context"

// TokenSource supplies the bearer token attached to every runtime request.
// Token acquisition (OAuth M2M flows, caching, refresh) is the caller's
// concern; the transport only asks for the current token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a TokenSource that always yields the same
// token, typically one fetched once at session start.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

type staticTokenSource string

func (s staticTokenSource) Token(context.Context) (string, error) {
	return string(s), nil
}

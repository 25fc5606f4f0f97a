package http

import "net/http"

type authTransport struct {
	header    string
	prefix    string
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		reqCopy.Header.Set(t.header, t.prefix+t.token)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAPIKeyHeader sends the key verbatim in the named header
// (Qdrant uses "api-key", Gemini uses "x-goog-api-key")
func WithAPIKeyHeader(header, key string) HttpOpts {
	return withHeaderAuth(header, "", key)
}

func withHeaderAuth(header, prefix, token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    header,
			prefix:    prefix,
			token:     token,
			transport: rt,
		}
	})
}

package httpclient

import (
	"net/http"
	"net/http/httptest"
)

// handlerTransport serves requests directly from an http.Handler.
// It uses httptest.NewRecorder to capture responses without making actual
// network calls.
type handlerTransport struct {
	handler http.Handler
}

func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	if r.Body == nil {
		r.Body = http.NoBody
	}
	r.RequestURI = req.URL.RequestURI()

	rr := httptest.NewRecorder()
	t.handler.ServeHTTP(rr, r)

	resp := rr.Result()
	resp.Request = req
	return resp, nil
}

// NewTestTransport returns a RoundTripper that dispatches every request to
// handler in process.
func NewTestTransport(handler http.Handler) http.RoundTripper {
	return handlerTransport{handler: handler}
}

// NewTestClient creates a client whose requests are served by handler in
// process. Options other than Transport are honoured.
func NewTestClient(config Configurator, handler http.Handler, opts ...ClientOptions) *Client {
	var o ClientOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	o.Transport = NewTestTransport(handler)
	return NewClient(config, o)
}

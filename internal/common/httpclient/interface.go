package httpclient

import "context"

// Gateway is the request surface used by CLI commands.
type Gateway interface {
	// Request sends an authenticated request and returns the classified JSON
	// payload.
	Request(ctx context.Context, opts RequestOptions) ([]byte, error)

	// Do sends a request and returns the raw response; only transport level
	// failures are errors.
	Do(ctx context.Context, opts RequestOptions) (*Response, error)

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
}

var _ Gateway = &Client{}

// Package backend exposes typed operations over the campus REST API, one
// file per resource. All methods take a context and return explicit errors;
// response JSON is reshaped into the model types callers work with.
package backend

import (
	"github.com/rs/zerolog"

	"github.com/campusgrid/lectern/internal/rest"
)

type Client struct {
	api *rest.Client
	log zerolog.Logger
}

func New(api *rest.Client, log zerolog.Logger) *Client {
	return &Client{api: api, log: log}
}

// WithTokens returns a copy bound to a different token source, for
// per-request credentials in the web layer.
func (c *Client) WithTokens(tokens rest.TokenSource) *Client {
	return &Client{api: c.api.WithTokens(tokens), log: c.log}
}

package smartthings

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Dispatcher maps catalog operations onto REST calls. Local operations are
// handed to a separate dispatcher and never reach the upstream API.
type Dispatcher struct {
	upstream ports.Upstream
	local    ports.Dispatcher
	catalog  *domain.Catalog
	token    string
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. token is used when a call carries no auth parameter.
func NewDispatcher(upstream ports.Upstream, local ports.Dispatcher, catalog *domain.Catalog, token string) *Dispatcher {
	return &Dispatcher{upstream: upstream, local: local, catalog: catalog, token: token}
}

// Dispatch implements ports.Dispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, op string, params domain.Params) (any, error) {
	entry, known := d.catalog.Lookup(op)
	if !known {
		return nil, unknown(op)
	}
	if entry.Class() == domain.ClassLocal {
		if d.local == nil {
			return nil, unknown(op)
		}
		return d.local.Dispatch(ctx, op, params)
	}

	req, ok, err := buildRequest(op, params)
	if !ok {
		return nil, unknown(op)
	}
	if err != nil {
		return nil, zerr.With(err, "operation", op)
	}

	token, err := d.resolveToken(params)
	if err != nil {
		return nil, zerr.With(err, "operation", op)
	}
	req.Token = token
	return d.upstream.Do(ctx, req)
}

func (d *Dispatcher) resolveToken(params domain.Params) (string, error) {
	token, err := params.String(domain.AuthParam)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	if d.token != "" {
		return d.token, nil
	}
	return "", zerr.Wrap(domain.ErrMissingToken, "pass auth or set "+domain.TokenEnvVar)
}

func unknown(op string) error {
	return zerr.With(zerr.Wrap(domain.ErrUnknownOperation, "no handler for "+op), "operation", op)
}

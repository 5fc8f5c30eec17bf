package app

import (
	"context"
	"net/http"
	"os"

	"go.trai.ch/thingsgate/internal/adapters/httpapi"
	"go.trai.ch/thingsgate/internal/adapters/rpc"
	"go.trai.ch/thingsgate/internal/adapters/stdio"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Remotes opens client connections for every supported transport.
type Remotes struct {
	HTTPClient *http.Client
	// Executable locates the binary spawned for the stdio transport.
	Executable func() (string, error)
}

var _ ports.RemoteFactory = (*Remotes)(nil)

// NewRemotes creates a Remotes that spawns the running binary for stdio.
func NewRemotes() *Remotes {
	return &Remotes{
		HTTPClient: &http.Client{},
		Executable: os.Executable,
	}
}

// Open connects to the server described by cfg.
func (r *Remotes) Open(ctx context.Context, cfg domain.ClientConfig) (ports.Remote, error) {
	switch cfg.Transport {
	case domain.TransportHTTP:
		return httpapi.NewClient("http://"+cfg.Addr(), r.HTTPClient), nil
	case domain.TransportGRPC:
		c, err := rpc.Dial(cfg.Addr())
		if err != nil {
			return nil, zerr.Wrap(domain.ErrServerUnreachable, err.Error())
		}
		return c, nil
	case domain.TransportStdio:
		exe, err := r.Executable()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to locate thingsgate binary")
		}
		c, err := stdio.Spawn(ctx, exe, "serve", "--transport", string(domain.TransportStdio))
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		_, err := domain.ParseTransport(string(cfg.Transport))
		return nil, err
	}
}

package offline

import (
	"fmt"

	"github.com/iudanet/offsync/internal/client/api"
	clientsync "github.com/iudanet/offsync/internal/client/sync"
	"github.com/iudanet/offsync/internal/config"
)

// NewTransport builds the configured transport
func NewTransport(cfg *config.Config) (clientsync.Transport, error) {
	opts := api.ClientOptions{
		AuthToken: cfg.Transport.AuthToken,
		ClientID:  cfg.ClientID,
		Timeout:   cfg.Transport.Timeout(),
		Compress:  cfg.Transport.Compress,
	}

	switch cfg.Transport.Kind {
	case config.TransportHTTP:
		return api.NewClient(cfg.Transport.ServerURL, opts), nil
	case config.TransportWS:
		return api.NewWSClient(cfg.Transport.ServerURL, opts)
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport.Kind)
	}
}

package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"pulse_tracker/internal/app/port"
)

const defaultConnectionTimeout = 10 * time.Second

// ProviderPool implements port.ProviderSelector with plain round-robin over
// a fixed list of RPC endpoints. There is no health tracking: every endpoint
// is treated as interchangeable and a failing call propagates to the caller,
// who lands on the next endpoint by simply calling again.
type ProviderPool struct {
	clients []*ethclient.Client
	cursor  int
	mu      sync.Mutex
}

// NewProviderPool dials every configured endpoint and keeps the ones that
// connect. It fails only when no endpoint is reachable at all.
func NewProviderPool(endpoints []string, log port.Logger) (*ProviderPool, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no RPC endpoints configured")
	}

	clients := make([]*ethclient.Client, 0, len(endpoints))
	var lastErr error
	for _, endpoint := range endpoints {
		ctx, cancel := context.WithTimeout(context.Background(), defaultConnectionTimeout)
		ethClient, err := ethclient.DialContext(ctx, endpoint)
		cancel()
		if err != nil {
			log.Warn("Failed to connect to RPC endpoint, skipping", "endpoint", endpoint, "error", err)
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", endpoint, err)
			continue
		}
		log.Debug("Connected to RPC endpoint", "endpoint", endpoint)
		clients = append(clients, ethClient)
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("all RPC connection attempts failed: %w", lastErr)
	}
	return &ProviderPool{clients: clients}, nil
}

// Next returns the next client and advances the cursor modulo pool size.
// The mutex keeps the cursor consistent under concurrent resolutions.
func (p *ProviderPool) Next() *ethclient.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	ethClient := p.clients[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.clients)
	return ethClient
}

// Close releases all underlying connections.
func (p *ProviderPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ethClient := range p.clients {
		ethClient.Close()
	}
}

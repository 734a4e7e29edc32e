package port

import (
	"context"

	"pulse_tracker/internal/domain/entity"
)

// ScanService values one or more wallets and, for multi-wallet requests,
// merges them into a combined portfolio.
type ScanService interface {
	Scan(ctx context.Context, walletAddresses []string) (*entity.ScanResult, error)
}

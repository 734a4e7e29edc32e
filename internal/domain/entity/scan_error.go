package entity

// ScanError records a non-fatal problem hit while scanning a wallet.
// Resolution failures degrade into unpriced quotes or skipped positions,
// so a scan never aborts because one token could not be valued.
type ScanError struct {
	WalletAddress string `json:"walletAddress,omitempty"`
	TokenAddress  string `json:"tokenAddress,omitempty"`
	TokenSymbol   string `json:"tokenSymbol,omitempty"`
	Message       string `json:"message"`
}

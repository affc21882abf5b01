package solana

import "context"

// RPCClient defines the Solana RPC HTTP surface the scanner needs.
type RPCClient interface {
	// GetAccountInfo retrieves a raw account. Returns nil when the account
	// does not exist.
	GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error)

	// GetTokenSupply retrieves the total supply of a mint.
	GetTokenSupply(ctx context.Context, mint string) (*TokenAmount, error)

	// GetTokenLargestAccounts retrieves the 20 largest token accounts of a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAccountBalance, error)
}

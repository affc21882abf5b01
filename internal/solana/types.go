package solana

// AccountInfo is a raw on-chain account.
type AccountInfo struct {
	Owner      string
	Data       []byte // decoded from base64
	Lamports   uint64
	Executable bool
}

// TokenAmount is a token quantity with mint decimals.
type TokenAmount struct {
	Amount   uint64
	Decimals uint8
	UIAmount float64
}

// TokenAccountBalance is one entry from getTokenLargestAccounts.
type TokenAccountBalance struct {
	Address  string
	Amount   uint64
	Decimals uint8
}

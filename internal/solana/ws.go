package solana

import "context"

// WSClient defines Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeAccount subscribes to state changes of a single account.
	SubscribeAccount(ctx context.Context, address string) (<-chan AccountNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// AccountNotification represents an account subscription message.
type AccountNotification struct {
	Address  string
	Slot     int64
	Owner    string
	Lamports uint64
	Data     []byte
}

package sources

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/solana"
)

// SPL mint account layout offsets (82 bytes total).
const (
	mintAccountSize        = 82
	mintAuthorityOptionOff = 0
	mintAuthorityOff       = 4
	mintSupplyOff          = 36
	mintDecimalsOff        = 44
	freezeAuthorityOptOff  = 46
	freezeAuthorityOff     = 50
)

// RPCChainSource reads mint account state over Solana RPC.
type RPCChainSource struct {
	rpc solana.RPCClient
}

// NewRPCChainSource creates a chain-context source backed by an RPC client.
func NewRPCChainSource(rpc solana.RPCClient) *RPCChainSource {
	return &RPCChainSource{rpc: rpc}
}

// Fetch reads and decodes the mint account for a token.
func (s *RPCChainSource) Fetch(ctx context.Context, mint string) (*domain.ChainContext, error) {
	info, err := s.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("get mint account: %w", err)
	}
	if info == nil {
		return nil, ErrUnavailable
	}

	return DecodeMintAccount(info.Data)
}

// DecodeMintAccount decodes the SPL Token mint account layout.
// A COption<Pubkey> is a little-endian u32 tag followed by 32 bytes; tag 0
// means the authority has been revoked.
func DecodeMintAccount(data []byte) (*domain.ChainContext, error) {
	if len(data) < mintAccountSize {
		return nil, fmt.Errorf("mint account too short: %d bytes", len(data))
	}

	ctx := &domain.ChainContext{
		Supply:   binary.LittleEndian.Uint64(data[mintSupplyOff:]),
		Decimals: data[mintDecimalsOff],
	}

	if binary.LittleEndian.Uint32(data[mintAuthorityOptionOff:]) != 0 {
		authority := base58.Encode(data[mintAuthorityOff : mintAuthorityOff+32])
		ctx.MintAuthority = &authority
	}

	if binary.LittleEndian.Uint32(data[freezeAuthorityOptOff:]) != 0 {
		authority := base58.Encode(data[freezeAuthorityOff : freezeAuthorityOff+32])
		ctx.FreezeAuthority = &authority
	}

	return ctx, nil
}

// Verify interface compliance at compile time.
var _ ChainContextSource = (*RPCChainSource)(nil)

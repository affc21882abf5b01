package sources

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/solana"
)

// bondingCurveDiscriminator is the Anchor account discriminator of the
// pump.fun BondingCurve account.
var bondingCurveDiscriminator = []byte{0x17, 0xb7, 0xf8, 0x37, 0x60, 0xd8, 0xac, 0x60}

// Bonding-curve account layout: 8-byte discriminator, five u64 fields, a
// one-byte complete flag, then (newer layout) a 32-byte creator.
const (
	curveAccountMinSize      = 8 + 5*8 + 1
	curveAccountCreatorSize  = curveAccountMinSize + 32
	curveVirtualTokenOff     = 8
	curveVirtualSolOff       = 16
	curveRealTokenOff        = 24
	curveRealSolOff          = 32
	curveTokenTotalSupplyOff = 40
	curveCompleteOff         = 48
	curveCreatorOff          = 49
)

// RPCCurveSource reads the pump.fun bonding-curve account for a mint.
type RPCCurveSource struct {
	rpc solana.RPCClient
}

// NewRPCCurveSource creates a curve-state source backed by an RPC client.
func NewRPCCurveSource(rpc solana.RPCClient) *RPCCurveSource {
	return &RPCCurveSource{rpc: rpc}
}

// Fetch derives the curve PDA for the mint, reads the account and decodes it.
// Returns ErrUnavailable when no curve account exists (the token was never
// issued through the curve program).
func (s *RPCCurveSource) Fetch(ctx context.Context, mint string) (*domain.CurveState, error) {
	pda, err := solana.BondingCurvePDA(mint)
	if err != nil {
		return nil, fmt.Errorf("derive curve pda: %w", err)
	}

	info, err := s.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("get curve account: %w", err)
	}
	if info == nil {
		return nil, ErrUnavailable
	}

	state, err := DecodeCurveAccount(info.Data)
	if err != nil {
		return nil, err
	}
	state.PDA = pda
	return state, nil
}

// DecodeCurveAccount decodes a pump.fun BondingCurve account.
func DecodeCurveAccount(data []byte) (*domain.CurveState, error) {
	if len(data) < curveAccountMinSize {
		return nil, fmt.Errorf("curve account too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], bondingCurveDiscriminator) {
		return nil, fmt.Errorf("not a bonding curve account")
	}

	state := &domain.CurveState{
		VirtualTokenReserves: binary.LittleEndian.Uint64(data[curveVirtualTokenOff:]),
		VirtualSolReserves:   binary.LittleEndian.Uint64(data[curveVirtualSolOff:]),
		RealTokenReserves:    binary.LittleEndian.Uint64(data[curveRealTokenOff:]),
		RealSolReserves:      binary.LittleEndian.Uint64(data[curveRealSolOff:]),
		TokenTotalSupply:     binary.LittleEndian.Uint64(data[curveTokenTotalSupplyOff:]),
		Complete:             data[curveCompleteOff] != 0,
	}

	if len(data) >= curveAccountCreatorSize {
		state.Creator = base58.Encode(data[curveCreatorOff : curveCreatorOff+32])
	}

	return state, nil
}

// Verify interface compliance at compile time.
var _ CurveStateSource = (*RPCCurveSource)(nil)

package sources

import (
	"context"
	"encoding/binary"

	"solana-riskscan/internal/solana"
)

// fakeRPC is an in-memory RPCClient for adapter tests.
type fakeRPC struct {
	accountInfo     func(address string) (*solana.AccountInfo, error)
	tokenSupply     func(mint string) (*solana.TokenAmount, error)
	largestAccounts func(mint string) ([]solana.TokenAccountBalance, error)
}

func (f *fakeRPC) GetAccountInfo(_ context.Context, address string) (*solana.AccountInfo, error) {
	if f.accountInfo == nil {
		return nil, nil
	}
	return f.accountInfo(address)
}

func (f *fakeRPC) GetTokenSupply(_ context.Context, mint string) (*solana.TokenAmount, error) {
	if f.tokenSupply == nil {
		return nil, nil
	}
	return f.tokenSupply(mint)
}

func (f *fakeRPC) GetTokenLargestAccounts(_ context.Context, mint string) ([]solana.TokenAccountBalance, error) {
	if f.largestAccounts == nil {
		return nil, nil
	}
	return f.largestAccounts(mint)
}

var _ solana.RPCClient = (*fakeRPC)(nil)

// buildMintAccount builds an SPL mint account fixture. Authority slices must
// be 32 bytes or nil for revoked.
func buildMintAccount(mintAuthority, freezeAuthority []byte, supply uint64, decimals uint8) []byte {
	data := make([]byte, mintAccountSize)
	if mintAuthority != nil {
		binary.LittleEndian.PutUint32(data[mintAuthorityOptionOff:], 1)
		copy(data[mintAuthorityOff:], mintAuthority)
	}
	binary.LittleEndian.PutUint64(data[mintSupplyOff:], supply)
	data[mintDecimalsOff] = decimals
	if freezeAuthority != nil {
		binary.LittleEndian.PutUint32(data[freezeAuthorityOptOff:], 1)
		copy(data[freezeAuthorityOff:], freezeAuthority)
	}
	return data
}

// buildCurveAccount builds a pump.fun BondingCurve account fixture.
func buildCurveAccount(realSol uint64, complete bool, creator []byte) []byte {
	size := curveAccountMinSize
	if creator != nil {
		size = curveAccountCreatorSize
	}
	data := make([]byte, size)
	copy(data, bondingCurveDiscriminator)
	binary.LittleEndian.PutUint64(data[curveVirtualTokenOff:], 1_000_000)
	binary.LittleEndian.PutUint64(data[curveVirtualSolOff:], 30_000_000_000)
	binary.LittleEndian.PutUint64(data[curveRealTokenOff:], 800_000)
	binary.LittleEndian.PutUint64(data[curveRealSolOff:], realSol)
	binary.LittleEndian.PutUint64(data[curveTokenTotalSupplyOff:], 1_000_000)
	if complete {
		data[curveCompleteOff] = 1
	}
	if creator != nil {
		copy(data[curveCreatorOff:], creator)
	}
	return data
}

package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program and mint addresses.
const (
	// TokenProgramID is the SPL Token program.
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	// MetadataProgramID is the Metaplex Token Metadata program.
	MetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	// PumpFunProgramID is the pump.fun bonding-curve program.
	PumpFunProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	// WrappedSOLMint is the wrapped native SOL mint.
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
)

// ValidateAddress checks that s is a base58-encoded 32-byte public key.
func ValidateAddress(s string) error {
	if s == "" {
		return fmt.Errorf("empty address")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("address must be 32 bytes, got %d", len(raw))
	}
	return nil
}

// DerivePDA derives a Program Derived Address using the Solana algorithm:
// append a bump seed, the program ID and the "ProgramDerivedAddress" marker
// to the seeds, SHA256 the whole, and take the first bump whose hash is off
// the ed25519 curve.
func DerivePDA(seeds [][]byte, programID string) (string, error) {
	program, err := base58.Decode(programID)
	if err != nil {
		return "", fmt.Errorf("decode program id: %w", err)
	}
	if len(program) != 32 {
		return "", fmt.Errorf("program id must be 32 bytes, got %d", len(program))
	}

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, program...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), nil
		}
	}

	return "", fmt.Errorf("no valid bump seed found")
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// BondingCurvePDA derives the pump.fun bonding-curve account for a mint.
func BondingCurvePDA(mint string) (string, error) {
	raw, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}
	return DerivePDA([][]byte{[]byte("bonding-curve"), raw}, PumpFunProgramID)
}

// MetadataPDA derives the Metaplex metadata account for a mint.
func MetadataPDA(mint string) (string, error) {
	raw, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}
	program, err := base58.Decode(MetadataProgramID)
	if err != nil {
		return "", fmt.Errorf("decode metadata program id: %w", err)
	}
	return DerivePDA([][]byte{[]byte("metadata"), program, raw}, MetadataProgramID)
}

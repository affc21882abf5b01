package sources

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/solana"
)

// MetaplexMetadataSource reads the Metaplex metadata account of a mint and
// enriches it with the off-chain JSON the URI points at.
type MetaplexMetadataSource struct {
	rpc    solana.RPCClient
	client Doer
}

// NewMetaplexMetadataSource creates a metadata source. client fetches the
// off-chain JSON and may be nil to use a default HTTP client.
func NewMetaplexMetadataSource(rpc solana.RPCClient, client Doer) *MetaplexMetadataSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &MetaplexMetadataSource{rpc: rpc, client: client}
}

// Fetch reads and decodes metadata for the mint. Off-chain fetch failures
// degrade to on-chain data only; a missing metadata account is ErrUnavailable.
func (s *MetaplexMetadataSource) Fetch(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	pda, err := solana.MetadataPDA(mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata pda: %w", err)
	}

	info, err := s.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("get metadata account: %w", err)
	}
	if info == nil {
		return nil, ErrUnavailable
	}

	meta, err := DecodeMetadataAccount(info.Data)
	if err != nil {
		return nil, err
	}

	if meta.URI != "" {
		// Best effort: the scan must not fail on a dead IPFS gateway.
		s.fetchOffchain(ctx, meta)
	}

	return meta, nil
}

// fetchOffchain loads the URI JSON and fills image and social links.
func (s *MetaplexMetadataSource) fetchOffchain(ctx context.Context, meta *domain.TokenMetadata) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URI, nil)
	if err != nil {
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var offchain struct {
		Image      string `json:"image"`
		Website    string `json:"website"`
		Twitter    string `json:"twitter"`
		Telegram   string `json:"telegram"`
		Extensions struct {
			Website  string `json:"website"`
			Twitter  string `json:"twitter"`
			Telegram string `json:"telegram"`
			Discord  string `json:"discord"`
		} `json:"extensions"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&offchain); err != nil {
		return
	}

	meta.Image = offchain.Image
	meta.Socials = domain.Socials{
		Website:  firstNonEmpty(offchain.Extensions.Website, offchain.Website),
		Twitter:  firstNonEmpty(offchain.Extensions.Twitter, offchain.Twitter),
		Telegram: firstNonEmpty(offchain.Extensions.Telegram, offchain.Telegram),
		Discord:  offchain.Extensions.Discord,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DecodeMetadataAccount decodes a Metaplex token metadata account:
// key u8, update authority 32, mint 32, three borsh strings (name, symbol,
// uri), seller fee u16, optional creator vec, primary sale u8, isMutable u8.
func DecodeMetadataAccount(data []byte) (*domain.TokenMetadata, error) {
	if len(data) < 1+32+32 {
		return nil, fmt.Errorf("metadata account too short: %d bytes", len(data))
	}

	meta := &domain.TokenMetadata{
		UpdateAuthority: base58.Encode(data[1:33]),
	}

	off := 65 // key + update authority + mint

	name, off, err := readBorshString(data, off)
	if err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}
	symbol, off, err := readBorshString(data, off)
	if err != nil {
		return nil, fmt.Errorf("read symbol: %w", err)
	}
	uri, off, err := readBorshString(data, off)
	if err != nil {
		return nil, fmt.Errorf("read uri: %w", err)
	}
	meta.Name = name
	meta.Symbol = symbol
	meta.URI = uri

	// Seller fee basis points
	if off+2 > len(data) {
		return nil, fmt.Errorf("truncated after uri")
	}
	off += 2

	// Option<Vec<Creator>>
	if off >= len(data) {
		return nil, fmt.Errorf("truncated before creators")
	}
	hasCreators := data[off] != 0
	off++
	if hasCreators {
		if off+4 > len(data) {
			return nil, fmt.Errorf("truncated creator count")
		}
		count := binary.LittleEndian.Uint32(data[off:])
		off += 4
		const creatorSize = 32 + 1 + 1
		if count > 16 || off+int(count)*creatorSize > len(data) {
			return nil, fmt.Errorf("invalid creator count %d", count)
		}
		for i := uint32(0); i < count; i++ {
			meta.Creators = append(meta.Creators, domain.Creator{
				Address:  base58.Encode(data[off : off+32]),
				Verified: data[off+32] != 0,
				Share:    data[off+33],
			})
			off += creatorSize
		}
	}

	// primarySaleHappened + isMutable
	if off+2 > len(data) {
		return nil, fmt.Errorf("truncated before mutability flag")
	}
	meta.Mutable = data[off+1] != 0

	return meta, nil
}

// readBorshString reads a u32-length-prefixed string, trimming the null
// padding Metaplex stores inside the fixed-size field.
func readBorshString(data []byte, off int) (string, int, error) {
	if off+4 > len(data) {
		return "", off, fmt.Errorf("truncated length at offset %d", off)
	}
	length := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if length < 0 || off+length > len(data) {
		return "", off, fmt.Errorf("invalid string length %d at offset %d", length, off-4)
	}
	s := strings.TrimRight(string(data[off:off+length]), "\x00")
	return s, off + length, nil
}

// Verify interface compliance at compile time.
var _ MetadataSource = (*MetaplexMetadataSource)(nil)

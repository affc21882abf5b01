package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func rpcServer(t *testing.T, handler func(method string, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		handler(req.Method, w)
	}))
}

func TestHTTPClient_GetAccountInfo(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	srv := rpcServer(t, func(method string, w http.ResponseWriter) {
		if method != "getAccountInfo" {
			t.Errorf("Unexpected method %s", method)
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"value":{
			"owner":%q,"lamports":1000000,"executable":false,
			"data":[%q,"base64"]
		}}}`, TokenProgramID, base64.StdEncoding.EncodeToString(raw))
	})
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithHTTPClient(srv.Client()))
	info, err := client.GetAccountInfo(context.Background(), "someAddress")
	if err != nil {
		t.Fatalf("GetAccountInfo failed: %v", err)
	}
	if info == nil {
		t.Fatal("Expected account info")
	}
	if info.Owner != TokenProgramID || info.Lamports != 1000000 {
		t.Errorf("Account fields mismatch: %+v", info)
	}
	if string(info.Data) != string(raw) {
		t.Errorf("Base64 data not decoded: %v", info.Data)
	}
}

func TestHTTPClient_GetAccountInfo_Missing(t *testing.T) {
	srv := rpcServer(t, func(method string, w http.ResponseWriter) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"value":null}}`)
	})
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithHTTPClient(srv.Client()))
	info, err := client.GetAccountInfo(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetAccountInfo failed: %v", err)
	}
	if info != nil {
		t.Errorf("Missing account must be nil, got %+v", info)
	}
}

func TestHTTPClient_GetTokenSupply(t *testing.T) {
	srv := rpcServer(t, func(method string, w http.ResponseWriter) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"value":{
			"amount":"1000000000","decimals":6,"uiAmount":1000.0
		}}}`)
	})
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithHTTPClient(srv.Client()))
	supply, err := client.GetTokenSupply(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetTokenSupply failed: %v", err)
	}
	if supply.Amount != 1000000000 || supply.Decimals != 6 {
		t.Errorf("Supply mismatch: %+v", supply)
	}
}

func TestHTTPClient_GetTokenLargestAccounts(t *testing.T) {
	srv := rpcServer(t, func(method string, w http.ResponseWriter) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"value":[
			{"address":"acc1","amount":"500","decimals":6},
			{"address":"acc2","amount":"300","decimals":6}
		]}}`)
	})
	defer srv.Close()

	client := NewHTTPClient(srv.URL, WithHTTPClient(srv.Client()))
	accounts, err := client.GetTokenLargestAccounts(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetTokenLargestAccounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Address != "acc1" || accounts[0].Amount != 500 {
		t.Errorf("Account mismatch: %+v", accounts[0])
	}
}

func TestHTTPClient_RetriesRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{"value":null}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL,
		WithHTTPClient(srv.Client()),
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
	)
	if _, err := client.GetAccountInfo(context.Background(), "addr"); err != nil {
		t.Fatalf("Expected retries to succeed, got %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", hits.Load())
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid params"}}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL,
		WithHTTPClient(srv.Client()),
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
	)
	if _, err := client.GetAccountInfo(context.Background(), "addr"); err == nil {
		t.Fatal("Expected RPC error surfaced")
	}
	if hits.Load() != 1 {
		t.Errorf("RPC-level errors must not be retried, got %d attempts", hits.Load())
	}
}

func TestHTTPClient_RetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL,
		WithHTTPClient(srv.Client()),
		WithMaxRetries(1),
		WithRetryDelay(time.Millisecond),
	)
	if _, err := client.GetAccountInfo(context.Background(), "addr"); err == nil {
		t.Fatal("Expected failure after retries exhausted")
	}
}

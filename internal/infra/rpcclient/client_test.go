package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ivankudzin/botlist/internal/transport/http/dto"
)

func TestInvokeSendsBearerTokenAndBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer staff-token" {
			t.Errorf("unexpected Authorization: %q", got)
		}
		if r.URL.Path != "/v1/rpc" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req dto.RPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "BotApprove" || req.Fields["bot_id"] != "42" {
			t.Errorf("unexpected request body: %+v", req)
		}
		content := "bot 42 approved"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.RPCResponse{Done: true, Reason: "Successfully performed BotApprove", Context: &content})
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", "staff-token", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Invoke(context.Background(), "BotApprove", map[string]string{"bot_id": "42", "reason": "ok"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !result.Done || result.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Context == nil || *result.Context != "bot 42 approved" {
		t.Fatalf("unexpected context: %v", result.Context)
	}
}

func TestInvokeReturnsRefusalAsResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(dto.RPCResponse{Reason: "Error performing BotApprove: bot 42 not found"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Invoke(context.Background(), "BotApprove", nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result.Done || result.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestInvokeClassifiesNonResultStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		status    int
		retryable bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, retryable: false},
		{name: "bad gateway", status: http.StatusBadGateway, retryable: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"code":"ERR","message":"nope"}`))
			}))
			defer server.Close()

			client, err := NewClient(server.URL, "token", time.Second)
			if err != nil {
				t.Fatalf("new client: %v", err)
			}

			_, err = client.Invoke(context.Background(), "BotClaim", nil)
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %v", err)
			}
			if reqErr.StatusCode != tc.status {
				t.Fatalf("unexpected status: %d", reqErr.StatusCode)
			}
			if IsRetryable(err) != tc.retryable {
				t.Fatalf("unexpected retryable: got %v want %v", IsRetryable(err), tc.retryable)
			}
		})
	}
}

func TestMethodsPassesQuery(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "premium" {
			t.Errorf("unexpected q: %q", got)
		}
		_ = json.NewEncoder(w).Encode(dto.MethodsResponse{Items: []dto.MethodSchema{{Method: "BotPremiumAdd"}}})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "token", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	items, err := client.Methods(context.Background(), "premium")
	if err != nil {
		t.Fatalf("methods: %v", err)
	}
	if len(items) != 1 || items[0].Method != "BotPremiumAdd" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	if _, err := NewClient("localhost", "token", 0); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
	if _, err := NewClient("http://localhost", " ", 0); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "github.com/ivankudzin/botlist/internal/services/auth"
	"github.com/ivankudzin/botlist/internal/transport/http/dto"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestActionsListsLocalCatalog(t *testing.T) {
	out, err := run(t, "actions", "premium")
	require.NoError(t, err)

	assert.Contains(t, out, "BotPremiumAdd")
	assert.Contains(t, out, "BotPremiumRemove")
	assert.Contains(t, out, "duration")
	assert.NotContains(t, out, "TeamNameEdit")
}

func TestActionsUnknownPartial(t *testing.T) {
	_, err := run(t, "actions", "nothing-like-this")
	assert.EqualError(t, err, `no action matches "nothing-like-this"`)
}

func TestInvokeSendsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rpc", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var req dto.RPCRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BotApprove", req.Method)
		assert.Equal(t, map[string]string{"bot_id": "42", "reason": "looks fine"}, req.Fields)

		_ = json.NewEncoder(w).Encode(dto.RPCResponse{Done: true, Reason: "Successfully performed BotApprove"})
	}))
	defer srv.Close()

	out, err := run(t, "invoke", "BotApprove",
		"--api", srv.URL,
		"--token", "secret-token",
		"-f", "bot_id=42",
		"-f", "reason=looks fine",
	)
	require.NoError(t, err)
	assert.Equal(t, "Successfully performed BotApprove\n", out)
}

func TestInvokeReportsRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(dto.RPCResponse{Reason: "You do not have permission to run staff actions"})
	}))
	defer srv.Close()

	out, err := run(t, "invoke", "BotApprove", "--api", srv.URL, "--token", "t", "-f", "bot_id=42")
	assert.EqualError(t, err, "BotApprove was not performed (status 403)")
	assert.Contains(t, out, "You do not have permission")
}

func TestInvokeRejectsMalformedField(t *testing.T) {
	_, err := run(t, "invoke", "BotApprove", "--api", "http://localhost:1", "--token", "t", "-f", "bot_id")
	assert.EqualError(t, err, `invalid field "bot_id": want name=value`)
}

func TestTokenIssuesParsableToken(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_SECRET", "cli-secret")
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := run(t, "--config", missing, "token", "--user", "7")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "expires "))

	claims, err := authsvc.NewJWTManager("cli-secret", time.Hour).ParseAccessToken(lines[0])
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
}

func TestTokenRequiresUser(t *testing.T) {
	_, err := run(t, "token")
	assert.EqualError(t, err, "--user must be a positive Telegram id")
}

package ui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/ivankudzin/botlist/internal/domain/enums"
	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/rpc"
)

func assertGolden(t *testing.T, name, text string) {
	t.Helper()
	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, name, []byte(text+"\n"))
}

func mustSpec(t *testing.T, method rpc.Method) rpc.Spec {
	t.Helper()
	spec, err := rpc.Default().Lookup(string(method))
	if err != nil {
		t.Fatalf("lookup %s: %v", method, err)
	}
	return spec
}

func TestRenderOutcome(t *testing.T) {
	_, validationErr := rpc.Default().Build("BotForceRemove", map[string]string{
		"bot_id": "42",
		"reason": "malware",
		"kick":   "maybe",
	})

	cases := []struct {
		name    string
		method  rpc.Method
		outcome rpc.Outcome
		err     error
		want    string
	}{
		{
			name:    "success with content",
			method:  rpc.MethodBotApprove,
			outcome: rpc.Content("Bot 42 approved: fine"),
			want:    "Successfully performed BotApprove\nBot 42 approved: fine",
		},
		{
			name:    "success without content",
			method:  rpc.MethodBotVoteBanAdd,
			outcome: rpc.NoContent(),
			want:    "Successfully performed BotVoteBanAdd",
		},
		{
			name:   "not found",
			method: rpc.MethodBotApprove,
			err:    &rpc.ActionError{Method: rpc.MethodBotApprove, Err: rpc.NotFoundf("bot 42 not found")},
			want:   "Error performing BotApprove: bot 42 not found",
		},
		{
			name:   "validation",
			method: rpc.MethodBotForceRemove,
			err:    validationErr,
			want:   "Error performing BotForceRemove: error parsing `kick`: invalid boolean",
		},
		{
			name:   "unauthorized",
			method: rpc.MethodBotApprove,
			err:    rpc.ErrUnauthorized,
			want:   NoPermissionMessage,
		},
		{
			name:   "consistency",
			method: rpc.MethodBotDeny,
			err:    &rpc.ActionError{Method: rpc.MethodBotDeny, Err: rpc.ErrConsistency},
			want:   "Internal error while performing BotDeny. Nothing was changed and the fault was logged",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderOutcome(tc.method, tc.outcome, tc.err); got != tc.want {
				t.Fatalf("RenderOutcome() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderFormGolden(t *testing.T) {
	assertGolden(t, "form_bot_premium_add", RenderForm(mustSpec(t, rpc.MethodBotPremiumAdd)))
	assertGolden(t, "form_bot_vote_reset_all", RenderForm(mustSpec(t, rpc.MethodBotVoteResetAll)))
}

func TestRenderConfirmPrompt(t *testing.T) {
	text := RenderConfirmPrompt(mustSpec(t, rpc.MethodBotClaim))
	if text != "Claim Bot (BotClaim)\nPress Next to fill in 2 fields, or Cancel." {
		t.Fatalf("unexpected prompt: %q", text)
	}
}

func TestRenderAuditNoticeGolden(t *testing.T) {
	entry := model.RPCLog{
		ID:        "6f1c2a8e-3c1f-4d7e-9a55-1b2c3d4e5f60",
		Method:    "BotApprove",
		UserID:    "7",
		Data:      json.RawMessage(`{"bot_id":"42","reason":"fine"}`),
		CreatedAt: time.Date(2026, time.January, 1, 9, 30, 0, 0, time.UTC),
	}
	assertGolden(t, "audit_notice", RenderAuditNotice(entry, "Bot 42 approved: fine"))
}

func TestRenderRPCLogsGolden(t *testing.T) {
	entries := []model.RPCLog{
		{
			ID:        "a",
			Method:    "BotPremiumAdd",
			UserID:    "7",
			Data:      json.RawMessage(`{"bot_id":"42","reason":"paid","duration_hours":336}`),
			CreatedAt: time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "b",
			Method:    "BotVoteResetAll",
			UserID:    "8",
			CreatedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	assertGolden(t, "rpc_logs", RenderRPCLogs(entries))

	if got := RenderRPCLogs(nil); got != "No staff actions recorded" {
		t.Fatalf("unexpected empty listing: %q", got)
	}
}

func TestRenderSuggestions(t *testing.T) {
	if got := RenderSuggestions("zzz", nil); got != `No action matches "zzz"` {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := RenderSuggestions("", rpc.Default().Methods()); got != "Pick a staff action" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestStartMessage(t *testing.T) {
	if StartMessage(enums.RoleNone) != NoPermissionMessage {
		t.Fatalf("non-staff should get the permission message")
	}
	if text := StartMessage(enums.RoleAdmin); !strings.Contains(text, "/rpc") || !strings.Contains(text, "ADMIN") {
		t.Fatalf("unexpected staff start message: %q", text)
	}
}

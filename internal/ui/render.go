package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivankudzin/botlist/internal/domain/model"
	"github.com/ivankudzin/botlist/internal/rpc"
)

const timeLayout = "2006-01-02 15:04 UTC"

// RenderOutcome is the one terminal message of an invocation.
func RenderOutcome(method rpc.Method, outcome rpc.Outcome, err error) string {
	switch {
	case err == nil:
		text := "Successfully performed " + string(method)
		if outcome.HasContent() {
			text += "\n" + outcome.Content
		}
		return text
	case errors.Is(err, rpc.ErrUnauthorized):
		return RenderUnauthorized()
	case errors.Is(err, rpc.ErrUnknownAction):
		return RenderUnknownAction(string(method))
	case errors.Is(err, rpc.ErrValidation):
		return RenderValidation(method, err)
	case errors.Is(err, rpc.ErrConsistency):
		return RenderInternal(method)
	default:
		return fmt.Sprintf("Error performing %s: %s", method, rpc.Reason(err))
	}
}

func RenderUnauthorized() string {
	return NoPermissionMessage
}

func RenderUnknownAction(name string) string {
	return fmt.Sprintf("Unknown action %q. Use /rpc to see the available actions", name)
}

func RenderValidation(method rpc.Method, err error) string {
	var fieldErr *rpc.FieldError
	if errors.As(err, &fieldErr) {
		return fmt.Sprintf("Error performing %s: %s", method, fieldErr.Error())
	}
	return fmt.Sprintf("Error performing %s: %s", method, rpc.Reason(err))
}

func RenderInternal(method rpc.Method) string {
	return fmt.Sprintf("Internal error while performing %s. Nothing was changed and the fault was logged", method)
}

func RenderConfirmPrompt(spec rpc.Spec) string {
	return fmt.Sprintf("%s (%s)\nPress Next to fill in %s, or Cancel.", spec.Title, spec.Method, pluralFields(len(spec.Fields)))
}

// RenderForm lists the fields a submission must carry, one `name: value`
// line each.
func RenderForm(spec rpc.Spec) string {
	lines := []string{
		spec.Title,
		"Reply with one line per field:",
	}
	for _, field := range spec.Fields {
		hint := field.Label
		if field.Placeholder != "" {
			hint += " (" + field.Placeholder + ")"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", field.Name, hint))
	}
	if len(spec.Fields) == 1 {
		lines = append(lines, "A bare value is accepted too.")
	}
	return strings.Join(lines, "\n")
}

func RenderSuggestions(partial string, methods []rpc.Method) string {
	if len(methods) == 0 {
		return fmt.Sprintf("No action matches %q", partial)
	}
	if strings.TrimSpace(partial) == "" {
		return "Pick a staff action"
	}
	return fmt.Sprintf("Actions matching %q", partial)
}

func RenderRPCLogs(entries []model.RPCLog) string {
	if len(entries) == 0 {
		return "No staff actions recorded"
	}
	lines := []string{"Latest staff actions"}
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%s %s by %s %s",
			entry.CreatedAt.UTC().Format(timeLayout),
			entry.Method,
			entry.UserID,
			compactData(entry.Data),
		))
	}
	return strings.Join(lines, "\n")
}

// RenderAuditNotice is the side-channel message posted after a committed
// action.
func RenderAuditNotice(entry model.RPCLog, content string) string {
	lines := []string{
		"RPC " + entry.Method,
		"By: " + entry.UserID,
		"At: " + entry.CreatedAt.UTC().Format(timeLayout),
		"Data: " + compactData(entry.Data),
	}
	if content != "" {
		lines = append(lines, "Result: "+content)
	}
	lines = append(lines, "ID: "+entry.ID)
	return strings.Join(lines, "\n")
}

func compactData(data []byte) string {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "{}"
	}
	return text
}

func pluralFields(n int) string {
	if n == 1 {
		return "1 field"
	}
	return fmt.Sprintf("%d fields", n)
}

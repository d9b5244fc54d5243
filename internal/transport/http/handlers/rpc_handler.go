package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/services/dispatch"
	"github.com/ivankudzin/botlist/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/botlist/internal/transport/http/errors"
	"github.com/ivankudzin/botlist/internal/ui"
)

const maxRPCBody = 64 << 10

type Invoker interface {
	Invoke(ctx context.Context, req dispatch.Request) (rpc.Outcome, error)
	Catalog() *rpc.Catalog
}

type RPCHandler struct {
	invoker Invoker
	logger  *zap.Logger
}

func NewRPCHandler(invoker Invoker, logger *zap.Logger) *RPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCHandler{invoker: invoker, logger: logger}
}

// Invoke runs one action for the authenticated caller. Once the caller is
// authenticated every answer, malformed requests included, is an RPCResponse.
func (h *RPCHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.invoker == nil {
		writeInternal(w, "RPC_UNAVAILABLE", "rpc dispatcher is unavailable")
		return
	}

	var req dto.RPCRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRPCBody)).Decode(&req); err != nil {
		writeRPCRejection(w, "invalid json body")
		return
	}
	req.Method = strings.TrimSpace(req.Method)
	if req.Method == "" {
		writeRPCRejection(w, "method is required")
		return
	}

	method := rpc.Method(req.Method)
	outcome, err := h.invoker.Invoke(r.Context(), dispatch.Request{
		CallerID: caller,
		Method:   req.Method,
		Fields:   req.Fields,
	})

	resp := dto.RPCResponse{
		Done:   err == nil,
		Reason: ui.RenderOutcome(method, outcome, err),
	}
	if err == nil && outcome.HasContent() {
		content := outcome.Content
		resp.Context = &content
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("rpc invocation failed",
			zap.String("method", req.Method),
			zap.String("caller_id", caller),
			zap.Error(err),
		)
	}
	httperrors.Write(w, status, resp)
}

// Methods lists the schemas of the actions matching ?q=.
func (h *RPCHandler) Methods(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(r); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.invoker == nil {
		writeInternal(w, "RPC_UNAVAILABLE", "rpc dispatcher is unavailable")
		return
	}

	catalog := h.invoker.Catalog()
	names := catalog.Suggest(r.URL.Query().Get("q"))
	items := make([]dto.MethodSchema, 0, len(names))
	for _, name := range names {
		spec, err := catalog.Lookup(string(name))
		if err != nil {
			continue
		}
		fields := make([]dto.FieldSchema, 0, len(spec.Fields))
		for _, field := range spec.Fields {
			fields = append(fields, dto.FieldSchema{
				Name:        field.Name,
				Label:       field.Label,
				Kind:        string(field.Kind),
				Placeholder: field.Placeholder,
				Paragraph:   field.Paragraph,
			})
		}
		items = append(items, dto.MethodSchema{
			Method: string(spec.Method),
			Title:  spec.Title,
			Fields: fields,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MethodsResponse{Items: items})
}

func writeRPCRejection(w http.ResponseWriter, reason string) {
	httperrors.Write(w, http.StatusBadRequest, dto.RPCResponse{Reason: reason})
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, rpc.ErrUnknownAction), errors.Is(err, rpc.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, rpc.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, rpc.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, rpc.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

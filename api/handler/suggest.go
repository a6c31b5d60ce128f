package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	appLogger "github.com/fastygo/taskmanager/pkg/logger"
	suggestUC "github.com/fastygo/taskmanager/usecase/suggest"
)

// SuggestHandler serves the generation function. It answers with its own
// `{subtasks}` / `{error}` body rather than the API envelope.
type SuggestHandler struct {
	baseHandler
	uc *suggestUC.UseCase
}

func NewSuggestHandler(uc *suggestUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SuggestHandler {
	return &SuggestHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Generate subtask suggestions for a task title
// @Tags functions
// @Router /functions/v1/generate-subtasks [post]
func (h *SuggestHandler) Generate(ctx *fasthttp.RequestCtx) {
	var req transport.GenerateSubtasksRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.GenerateSubtasksResponse{Error: "invalid payload"})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtasks, err := h.uc.SuggestSubtasks(stdCtx, req.TaskTitle)
	if err != nil {
		status, _ := mapError(err)
		if status >= http.StatusInternalServerError {
			appLogger.WithRequestID(stdCtx, h.logger).Warn("subtask generation failed", zap.Error(err))
		}
		h.respondJSON(ctx, status, transport.GenerateSubtasksResponse{Error: errorMessage(err, status)})
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.GenerateSubtasksResponse{Subtasks: subtasks})
}

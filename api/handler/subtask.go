package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/api/transport"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	subtaskUC "github.com/fastygo/taskmanager/usecase/subtask"
)

type SubtaskHandler struct {
	baseHandler
	uc *subtaskUC.UseCase
}

func NewSubtaskHandler(uc *subtaskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SubtaskHandler {
	return &SubtaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List subtasks of a task, ordered by order_index
// @Tags subtasks
// @Router /api/v1/tasks/{id}/subtasks [get]
func (h *SubtaskHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtasks, err := h.uc.ListSubtasks(stdCtx, userID, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	if subtasks == nil {
		subtasks = []domain.Subtask{}
	}
	h.respondSuccess(ctx, http.StatusOK, subtasks)
}

// @Summary Append a subtask
// @Tags subtasks
// @Router /api/v1/tasks/{id}/subtasks [post]
func (h *SubtaskHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CreateSubtaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateSubtask(stdCtx, userID, pathParam(ctx, "id"), req.Title)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Reassign every sibling's order in one transaction
// @Tags subtasks
// @Router /api/v1/tasks/{id}/subtasks/order [put]
func (h *SubtaskHandler) Reorder(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ReorderRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	subtasks, err := h.uc.Reorder(stdCtx, userID, pathParam(ctx, "id"), req.SubtaskIDs)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, subtasks)
}

// @Summary Update subtask
// @Tags subtasks
// @Router /api/v1/subtasks/{id} [patch]
func (h *SubtaskHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.UpdateSubtaskRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateSubtask(stdCtx, userID, pathParam(ctx, "id"), req.Patch())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Set one subtask's order index
// @Tags subtasks
// @Router /api/v1/subtasks/{id}/order [put]
func (h *SubtaskHandler) SetOrder(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.SetOrderRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.OrderIndex == nil {
		h.respondInvalid(ctx, domain.ErrInvalidOrder.Message)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.SetOrder(stdCtx, userID, pathParam(ctx, "id"), *req.OrderIndex)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete subtask
// @Tags subtasks
// @Router /api/v1/subtasks/{id} [delete]
func (h *SubtaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteSubtask(stdCtx, userID, pathParam(ctx, "id")); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

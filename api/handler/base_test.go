package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/infrastructure/monitor"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{domain.ErrTaskNotFound, http.StatusNotFound, "NOT_FOUND", "task not found"},
		{fmt.Errorf("create: %w", domain.ErrEmailTaken), http.StatusConflict, "CONFLICT", "email already registered"},
		{domain.ErrTitleRequired, http.StatusBadRequest, "INVALID", "title is required"},
		{domain.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL", "internal server error"},
	}
	for _, tt := range tests {
		status, code := mapError(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("mapError(%v) = %d %s", tt.err, status, code)
		}
		if got := errorMessage(tt.err, status); got != tt.message {
			t.Errorf("errorMessage(%v) = %q", tt.err, got)
		}
	}
}

type fixedStatus monitor.Status

func (s fixedStatus) GetStatus() monitor.Status { return monitor.Status(s) }

func TestHealthReportsDegraded(t *testing.T) {
	h := NewHealthHandler(fixedStatus{Services: map[string]bool{"postgresql": true, "redis": false}}, nil, nil)

	ctx := &fasthttp.RequestCtx{}
	h.Check(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}

	h = NewHealthHandler(fixedStatus{Services: map[string]bool{"postgresql": true}}, nil, nil)
	ctx = &fasthttp.RequestCtx{}
	h.Check(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
}

func TestUserIDRequiresHeader(t *testing.T) {
	h := newBaseHandler(nil, nil)
	ctx := &fasthttp.RequestCtx{}
	if h.userID(ctx) != "" {
		t.Fatal("expected missing user")
	}
	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
}

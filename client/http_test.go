package client_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/taskmanager/api/handler"
	"github.com/fastygo/taskmanager/client"
	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/internal/infrastructure/monitor"
	"github.com/fastygo/taskmanager/internal/middleware"
	"github.com/fastygo/taskmanager/internal/router"
	"github.com/fastygo/taskmanager/pkg/httpcontext"
	"github.com/fastygo/taskmanager/repository/memory"
	authUC "github.com/fastygo/taskmanager/usecase/auth"
	profileUC "github.com/fastygo/taskmanager/usecase/profile"
	subtaskUC "github.com/fastygo/taskmanager/usecase/subtask"
	suggestUC "github.com/fastygo/taskmanager/usecase/suggest"
	taskUC "github.com/fastygo/taskmanager/usecase/task"
)

type cannedGenerator []string

func (g cannedGenerator) Generate(context.Context, string, int) ([]string, error) {
	return g, nil
}

type healthy struct{}

func (healthy) GetStatus() monitor.Status {
	return monitor.Status{Services: map[string]bool{}, Buffer: true, LastCheck: time.Now()}
}

// newServer serves the full API over an in-memory listener and returns a
// client dialing it.
func newServer(t *testing.T) *client.HTTPClient {
	t.Helper()

	store := memory.NewStore()
	tokens := authUC.NewTokenIssuer("test-secret", "taskmanager-test")
	auth := authUC.New(store.Users(), store.Sessions(), tokens, time.Hour, nil).WithHashCost(bcrypt.MinCost)
	adapter := httpcontext.NewAdapter(5 * time.Second)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(auth, adapter, nil),
		Profile: apiHandler.NewProfileHandler(profileUC.New(store.Users(), nil, nil), adapter, nil),
		Task:    apiHandler.NewTaskHandler(taskUC.New(store.Tasks(), nil, nil), adapter, nil),
		Subtask: apiHandler.NewSubtaskHandler(subtaskUC.New(store.Subtasks(), store.Tasks(), nil, nil), adapter, nil),
		Suggest: apiHandler.NewSuggestHandler(suggestUC.New(cannedGenerator{"Buy milk", "Call vet", "Buy milk"}, 5, nil), adapter, nil),
		Health:  apiHandler.NewHealthHandler(healthy{}, adapter, nil),
	}
	r := router.New(handlers, middleware.Auth(auth, time.Second, nil))

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: r.Handler}
	go server.Serve(ln)
	t.Cleanup(func() {
		server.Shutdown()
		ln.Close()
	})

	return client.NewHTTPClient("http://taskmanager.test", client.WithDial(func(string) (net.Conn, error) {
		return ln.Dial()
	}))
}

func TestClientAgainstServer(t *testing.T) {
	api := newServer(t)
	session := client.NewSession(api, nil)
	store := api.WithTokens(session)
	ctx := context.Background()

	if err := session.SignUp(ctx, "bob@example.com", "correct horse", "Bob"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if session.User() == nil || session.Token() == "" {
		t.Fatal("signup should leave the session signed in")
	}

	tasks := client.NewTaskManager(store, session, nil)
	task, err := tasks.Add(ctx, "Errands", domain.PriorityUrgent)
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := tasks.Load(ctx); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if got := tasks.Tasks(); len(got) != 1 || got[0].ID != task.ID || got[0].Status != domain.StatusPending {
		t.Fatalf("tasks = %+v", got)
	}

	subtasks := client.NewSubtaskManager(store, session, task.ID, nil)
	suggestions := client.NewSuggestionClient(store, session, subtasks, nil)
	if err := suggestions.Generate(ctx, task.Title); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := suggestions.Suggestions(); len(got) != 2 {
		t.Fatalf("duplicates should be dropped: %v", got)
	}
	for _, s := range suggestions.Suggestions() {
		if err := suggestions.Commit(ctx, s); err != nil {
			t.Fatalf("commit %q: %v", s, err)
		}
	}

	list := subtasks.Subtasks()
	if len(list) != 2 || list[0].Title != "Buy milk" || list[1].OrderIndex != 1 {
		t.Fatalf("subtasks = %+v", list)
	}

	if err := subtasks.Move(ctx, list[1].ID, list[0].ID); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := subtasks.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	moved := subtasks.Subtasks()
	if moved[0].Title != "Call vet" || moved[0].OrderIndex != 0 || moved[1].OrderIndex != 1 {
		t.Fatalf("server order = %+v", moved)
	}

	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := subtasks.Load(ctx); err != nil || len(subtasks.Subtasks()) != 0 {
		t.Fatalf("subtasks should cascade: %v %v", subtasks.Subtasks(), err)
	}

	token := session.Token()
	if err := session.SignOut(ctx); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if _, err := api.CurrentUser(ctx, token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("revoked token err = %v", err)
	}
}

func TestClientErrorMapping(t *testing.T) {
	api := newServer(t)
	ctx := context.Background()

	if _, err := api.SignIn(ctx, "nobody@example.com", "whatever1"); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("bad credentials err = %v", err)
	}
	if _, err := api.ListTasks(ctx); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("missing token err = %v", err)
	}

	session := client.NewSession(api, nil)
	if err := session.SignUp(ctx, "carol@example.com", "correct horse", ""); err != nil {
		t.Fatal(err)
	}
	if err := session.SignUp(ctx, "CAROL@example.com", "correct horse", ""); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("duplicate signup err = %v", err)
	}

	store := api.WithTokens(session)
	if _, err := store.InsertSubtask(ctx, "no-such-task", "x"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Fatalf("foreign parent err = %v", err)
	}
	var dErr *domain.Error
	if _, err := store.GenerateSubtasks(ctx, "  "); !errors.As(err, &dErr) || dErr.Message != "taskTitle is required" {
		t.Fatalf("blank title err = %v", err)
	}
}

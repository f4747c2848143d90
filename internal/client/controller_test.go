package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkume/task-tracker/internal/database"
	"github.com/mkume/task-tracker/internal/handlers"
	"github.com/mkume/task-tracker/internal/middleware"
	"github.com/mkume/task-tracker/internal/models"
	"github.com/mkume/task-tracker/internal/repository"
	"github.com/mkume/task-tracker/internal/services"
	"github.com/mkume/task-tracker/internal/token"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// memTokenStore keeps the credential in memory for tests.
type memTokenStore struct {
	token string
}

func (s *memTokenStore) Load() (string, error) { return s.token, nil }
func (s *memTokenStore) Save(t string) error   { s.token = t; return nil }
func (s *memTokenStore) Clear() error          { s.token = ""; return nil }

// recordingNotifier collects raised notifications.
type recordingNotifier struct {
	bodies []string
}

func (n *recordingNotifier) Notify(title, body string) {
	n.bodies = append(n.bodies, body)
}

// newTestBackend starts a real server over an in-memory database.
func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	database.SetDB(db)

	tokens := token.NewManager("client-test-secret")
	authHandler := handlers.NewAuthHandler(services.NewAuthService(repository.NewUserRepository(db)), tokens)
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(repository.NewTaskRepository(db)))

	r := gin.New()
	api := r.Group("/api")
	users := api.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/profile", middleware.RequireAuth(tokens), authHandler.GetProfile)
	users.PUT("/profile", middleware.RequireAuth(tokens), authHandler.UpdateProfile)
	tasks := api.Group("/tasks")
	tasks.Use(middleware.RequireAuth(tokens))
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return server
}

func newTestController(t *testing.T, server *httptest.Server) (*Controller, *memTokenStore, *recordingNotifier) {
	t.Helper()
	store := &memTokenStore{}
	notifier := &recordingNotifier{}
	ctl := NewController(New(server.URL), store, notifier)
	return ctl, store, notifier
}

func TestController_RegisterAcquiresCredential(t *testing.T) {
	server := newTestBackend(t)
	ctl, store, _ := newTestController(t, server)
	ctx := context.Background()

	require.False(t, ctl.Authenticated())

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.True(t, ctl.Authenticated())
	require.NotEmpty(t, store.token)
	require.Equal(t, "alice", ctl.User().Username)
	require.Empty(t, ctl.Tasks())
}

func TestController_RestoreReusesCredential(t *testing.T) {
	server := newTestBackend(t)
	ctl, store, _ := newTestController(t, server)
	ctx := context.Background()

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "Buy milk", "2%", ""))

	// A fresh controller over the same store picks up the session.
	fresh := NewController(New(server.URL), store, nil)
	ok, err := fresh.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", fresh.User().Username)
	require.Len(t, fresh.Tasks(), 1)
}

func TestController_RestoreDropsStaleCredential(t *testing.T) {
	server := newTestBackend(t)
	ctl, store, _ := newTestController(t, server)

	store.token = "stale-garbage"
	ok, err := ctl.Restore(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, store.token)
	require.False(t, ctl.Authenticated())
}

func TestController_LogoutResetsState(t *testing.T) {
	server := newTestBackend(t)
	ctl, store, _ := newTestController(t, server)
	ctx := context.Background()

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "Buy milk", "2%", ""))

	require.NoError(t, ctl.Logout())
	require.False(t, ctl.Authenticated())
	require.Nil(t, ctl.User())
	require.Empty(t, ctl.Tasks())
	require.Empty(t, store.token)
}

func TestController_FilterAndSortRefetch(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, _ := newTestController(t, server)
	ctx := context.Background()

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "alpha", "first", ""))
	require.NoError(t, ctl.AddTask(ctx, "zulu", "second", ""))
	require.Len(t, ctl.Tasks(), 2)

	done := ctl.Tasks()[0]
	require.NoError(t, ctl.SetStatus(ctx, done.ID, "completed"))

	require.NoError(t, ctl.SetFilter(ctx, "completed"))
	require.Len(t, ctl.Tasks(), 1)
	require.Equal(t, done.ID, ctl.Tasks()[0].ID)

	require.NoError(t, ctl.SetFilter(ctx, "all"))
	require.NoError(t, ctl.SetSort(ctx, "title:desc"))
	require.Len(t, ctl.Tasks(), 2)
	require.Equal(t, "zulu", ctl.Tasks()[0].Title)
}

func TestController_SetFilterRejectedKeepsSelection(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, _ := newTestController(t, server)
	ctx := context.Background()

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "alpha", "first", ""))

	err := ctl.SetFilter(ctx, "archived")
	require.Error(t, err)
	require.Equal(t, "all", ctl.Filter())
	require.Len(t, ctl.Tasks(), 1)
}

func TestController_EditLifecycle(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, _ := newTestController(t, server)
	ctx := context.Background()

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "Buy milk", "2%", "2026-09-15"))
	task := ctl.Tasks()[0]

	// The draft copies the current fields.
	draft, err := ctl.StartEdit(task.ID)
	require.NoError(t, err)
	require.Equal(t, "Buy milk", draft.Title)
	require.Equal(t, "2%", draft.Description)
	require.Equal(t, "2026-09-15", draft.DueDate)
	require.Equal(t, "pending", draft.Status)

	// Cancel discards without touching the server.
	require.NoError(t, ctl.CancelEdit())
	require.Nil(t, ctl.Draft())
	require.Equal(t, "Buy milk", ctl.Tasks()[0].Title)

	// Save submits the buffer and refetches.
	draft, err = ctl.StartEdit(task.ID)
	require.NoError(t, err)
	draft.Title = "Buy oat milk"
	draft.Status = "in-progress"
	require.NoError(t, ctl.SaveEdit(ctx))
	require.Nil(t, ctl.Draft())
	require.Equal(t, "Buy oat milk", ctl.Tasks()[0].Title)
	require.Equal(t, models.TaskStatusInProgress, ctl.Tasks()[0].Status)
}

func TestController_SaveEditWithoutDraft(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, _ := newTestController(t, server)

	require.ErrorIs(t, ctl.SaveEdit(context.Background()), ErrNotEditing)
	require.ErrorIs(t, ctl.CancelEdit(), ErrNotEditing)
}

func TestController_DeleteTaskRefetches(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, _ := newTestController(t, server)
	ctx := context.Background()

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "Buy milk", "2%", ""))
	task := ctl.Tasks()[0]

	require.NoError(t, ctl.DeleteTask(ctx, task.ID))
	require.Empty(t, ctl.Tasks())

	require.Error(t, ctl.DeleteTask(ctx, task.ID))
}

func TestController_DueNotificationOncePerSession(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, notifier := newTestController(t, server)
	ctx := context.Background()

	yesterday := time.Now().Add(-24 * time.Hour).Format("2006-01-02")
	nextWeek := time.Now().Add(7 * 24 * time.Hour).Format("2006-01-02")

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "Overdue", "late", yesterday))
	require.NoError(t, ctl.AddTask(ctx, "Later", "fine", nextWeek))

	require.Len(t, notifier.bodies, 1)
	require.Contains(t, notifier.bodies[0], "Overdue")

	// Another fetch does not re-notify.
	require.NoError(t, ctl.Refresh(ctx))
	require.Len(t, notifier.bodies, 1)
}

func TestController_DueTodayNotifiesEastOfUTC(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, notifier := newTestController(t, server)
	ctx := context.Background()

	// The server stores bare dates as UTC midnight. A clock east of UTC
	// sees a later local midnight; the same calendar day still counts as
	// due today.
	auckland := time.FixedZone("UTC+12", 12*60*60)
	ctl.now = func() time.Time {
		return time.Date(2026, time.September, 1, 8, 0, 0, 0, auckland)
	}

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "Pay rent", "transfer", "2026-09-01"))

	require.Len(t, notifier.bodies, 1)
	require.Contains(t, notifier.bodies[0], "Pay rent")
}

func TestController_CompletedTaskNotNotified(t *testing.T) {
	server := newTestBackend(t)
	ctl, _, notifier := newTestController(t, server)
	ctx := context.Background()

	yesterday := time.Now().Add(-24 * time.Hour).Format("2006-01-02")

	require.NoError(t, ctl.Register(ctx, "alice", "secret123"))
	require.NoError(t, ctl.AddTask(ctx, "Overdue", "late", yesterday))
	require.Len(t, notifier.bodies, 1)

	task := ctl.Tasks()[0]
	require.NoError(t, ctl.SetStatus(ctx, task.ID, "completed"))

	// Fresh session: the completed task never triggers a notification.
	fresh, _, freshNotifier := newTestController(t, server)
	require.NoError(t, fresh.Login(ctx, "alice", "secret123"))
	require.Empty(t, freshNotifier.bodies)
}

func TestController_FailedFetchLeavesStateUnchanged(t *testing.T) {
	calls := 0
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":"t-1","title":"kept","description":"d","status":"completed"}]`))
			return
		}
		http.Error(w, `{"code":"INTERNAL_ERROR","message":"boom"}`, http.StatusInternalServerError)
	}))
	defer stub.Close()

	store := &memTokenStore{token: "whatever"}
	ctl := NewController(New(stub.URL), store, nil)
	ctl.api.SetToken("whatever")

	ctx := context.Background()
	require.NoError(t, ctl.Refresh(ctx))
	require.Len(t, ctl.Tasks(), 1)

	require.Error(t, ctl.Refresh(ctx))
	require.Len(t, ctl.Tasks(), 1)
	require.Equal(t, "kept", ctl.Tasks()[0].Title)
}

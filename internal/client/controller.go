package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkume/task-tracker/internal/dto"
	"github.com/mkume/task-tracker/internal/models"
)

// ErrNotEditing is returned when SaveEdit or CancelEdit is called without
// an edit in progress.
var ErrNotEditing = errors.New("no edit in progress")

// ErrUnauthenticated is returned when an operation requires a credential
// and none is held.
var ErrUnauthenticated = errors.New("not logged in")

// DefaultSort is the initial sort selection: newest first.
const DefaultSort = "createdAt:desc"

// Notifier raises a local notification for the user.
type Notifier interface {
	Notify(title, body string)
}

// TaskDraft is the scratch buffer for an edit in progress. Saving submits
// it as a partial update; cancelling discards it without a request.
type TaskDraft struct {
	TaskID      string
	Title       string
	Description string
	DueDate     string
	Status      string
}

// Controller holds the client-side view state: the task list, the filter
// and sort selection, an edit-in-progress draft, and the session-scoped
// set of tasks already notified about. A failed request leaves the view
// state unchanged.
type Controller struct {
	api      *Client
	tokens   TokenStore
	notifier Notifier

	user         *dto.UserDTO
	tasks        []models.Task
	filterStatus string
	sortOption   string
	draft        *TaskDraft
	notified     map[string]struct{}

	now func() time.Time
}

// NewController creates a Controller around an API client, a token store
// for credential persistence, and a notifier for due-date alerts.
func NewController(api *Client, tokens TokenStore, notifier Notifier) *Controller {
	return &Controller{
		api:          api,
		tokens:       tokens,
		notifier:     notifier,
		filterStatus: "all",
		sortOption:   DefaultSort,
		notified:     map[string]struct{}{},
		now:          time.Now,
	}
}

// Restore loads a persisted credential, if any, and performs the initial
// fetch. Returns false when no credential is stored.
func (ctl *Controller) Restore(ctx context.Context) (bool, error) {
	token, err := ctl.tokens.Load()
	if err != nil || token == "" {
		return false, nil
	}

	ctl.api.SetToken(token)

	user, err := ctl.api.Profile(ctx)
	if err != nil {
		// Stored token is stale; drop it.
		ctl.api.SetToken("")
		_ = ctl.tokens.Clear()
		return false, nil
	}

	ctl.user = user
	if err := ctl.Refresh(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Register creates an account, persists the credential, and performs the
// initial fetch.
func (ctl *Controller) Register(ctx context.Context, username, password string) error {
	resp, err := ctl.api.Register(ctx, Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	return ctl.acquireCredential(ctx, resp)
}

// Login authenticates, persists the credential, and performs the initial
// fetch.
func (ctl *Controller) Login(ctx context.Context, username, password string) error {
	resp, err := ctl.api.Login(ctx, Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	return ctl.acquireCredential(ctx, resp)
}

func (ctl *Controller) acquireCredential(ctx context.Context, resp *dto.AuthResponse) error {
	ctl.api.SetToken(resp.Token)
	if err := ctl.tokens.Save(resp.Token); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	ctl.user = &dto.UserDTO{ID: resp.ID, Username: resp.Username}
	return ctl.Refresh(ctx)
}

// Logout clears the persisted credential and resets the view state.
func (ctl *Controller) Logout() error {
	ctl.api.SetToken("")
	ctl.user = nil
	ctl.tasks = nil
	ctl.draft = nil
	ctl.notified = map[string]struct{}{}
	return ctl.tokens.Clear()
}

// Authenticated reports whether a credential is held.
func (ctl *Controller) Authenticated() bool {
	return ctl.api.Token() != ""
}

// User returns the current profile, or nil when unauthenticated.
func (ctl *Controller) User() *dto.UserDTO {
	return ctl.user
}

// Tasks returns the current in-memory task list.
func (ctl *Controller) Tasks() []models.Task {
	return ctl.tasks
}

// Filter returns the current status filter selection.
func (ctl *Controller) Filter() string {
	return ctl.filterStatus
}

// Sort returns the current sort selection.
func (ctl *Controller) Sort() string {
	return ctl.sortOption
}

// UpdateProfile changes the username and/or password and updates the held
// profile.
func (ctl *Controller) UpdateProfile(ctx context.Context, username, password *string) (*dto.UserDTO, error) {
	if !ctl.Authenticated() {
		return nil, ErrUnauthenticated
	}

	user, err := ctl.api.UpdateProfile(ctx, username, password)
	if err != nil {
		return nil, err
	}

	ctl.user = user
	return user, nil
}

// SetFilter changes the status filter and re-fetches with the new query.
func (ctl *Controller) SetFilter(ctx context.Context, status string) error {
	previous := ctl.filterStatus
	ctl.filterStatus = status
	if err := ctl.Refresh(ctx); err != nil {
		ctl.filterStatus = previous
		return err
	}
	return nil
}

// SetSort changes the sort selection and re-fetches with the new query.
func (ctl *Controller) SetSort(ctx context.Context, sortOption string) error {
	previous := ctl.sortOption
	ctl.sortOption = sortOption
	if err := ctl.Refresh(ctx); err != nil {
		ctl.sortOption = previous
		return err
	}
	return nil
}

// Refresh fetches the task list with the current filter and sort. The
// fetched list fully replaces the in-memory list, then the due-date check
// runs.
func (ctl *Controller) Refresh(ctx context.Context) error {
	tasks, err := ctl.api.ListTasks(ctx, ctl.filterStatus, ctl.sortOption)
	if err != nil {
		return err
	}

	ctl.tasks = tasks
	ctl.checkDueTasks()
	return nil
}

// AddTask creates a task and re-fetches the list.
func (ctl *Controller) AddTask(ctx context.Context, title, description, dueDate string) error {
	if _, err := ctl.api.CreateTask(ctx, title, description, dueDate); err != nil {
		return err
	}
	return ctl.Refresh(ctx)
}

// StartEdit copies the task's current fields into the scratch buffer.
func (ctl *Controller) StartEdit(taskID string) (*TaskDraft, error) {
	for _, task := range ctl.tasks {
		if task.ID != taskID {
			continue
		}
		draft := &TaskDraft{
			TaskID:      task.ID,
			Title:       task.Title,
			Description: task.Description,
			Status:      string(task.Status),
		}
		if task.DueDate != nil {
			draft.DueDate = task.DueDate.Format("2006-01-02")
		}
		ctl.draft = draft
		return draft, nil
	}
	return nil, fmt.Errorf("task %s not in view", taskID)
}

// Draft returns the edit in progress, or nil.
func (ctl *Controller) Draft() *TaskDraft {
	return ctl.draft
}

// SaveEdit submits the scratch buffer as an update and re-fetches.
func (ctl *Controller) SaveEdit(ctx context.Context) error {
	if ctl.draft == nil {
		return ErrNotEditing
	}

	draft := ctl.draft
	patch := TaskPatch{
		Title:       &draft.Title,
		Description: &draft.Description,
		Status:      &draft.Status,
		DueDate:     &draft.DueDate,
	}

	if _, err := ctl.api.UpdateTask(ctx, draft.TaskID, patch); err != nil {
		return err
	}

	ctl.draft = nil
	return ctl.Refresh(ctx)
}

// CancelEdit discards the scratch buffer without a request.
func (ctl *Controller) CancelEdit() error {
	if ctl.draft == nil {
		return ErrNotEditing
	}
	ctl.draft = nil
	return nil
}

// SetStatus updates a single task's status and re-fetches.
func (ctl *Controller) SetStatus(ctx context.Context, taskID, status string) error {
	if _, err := ctl.api.UpdateTask(ctx, taskID, TaskPatch{Status: &status}); err != nil {
		return err
	}
	return ctl.Refresh(ctx)
}

// DeleteTask removes a task and re-fetches.
func (ctl *Controller) DeleteTask(ctx context.Context, taskID string) error {
	if err := ctl.api.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	return ctl.Refresh(ctx)
}

// checkDueTasks raises a one-time notification for each pending task with
// a due date on or before today. Notified ids are remembered for the
// session only.
func (ctl *Controller) checkDueTasks() {
	if ctl.notifier == nil {
		return
	}

	today := truncateToDay(ctl.now())

	for _, task := range ctl.tasks {
		if task.Status != models.TaskStatusPending || task.DueDate == nil {
			continue
		}
		if _, seen := ctl.notified[task.ID]; seen {
			continue
		}
		// Due dates are stored as UTC midnight; compare calendar days in
		// the clock's location.
		if truncateToDay(task.DueDate.In(today.Location())).After(today) {
			continue
		}

		ctl.notifier.Notify("Task Due!", fmt.Sprintf("%s is due today or overdue.", task.Title))
		ctl.notified[task.ID] = struct{}{}
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

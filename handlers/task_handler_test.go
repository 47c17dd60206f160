package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/handlers"
	"github.com/raunak234362/WBT-OneLogin/middleware"
	"github.com/raunak234362/WBT-OneLogin/models"
	"github.com/raunak234362/WBT-OneLogin/response"
	"github.com/raunak234362/WBT-OneLogin/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeWorkflow records the last call and returns canned results.
type fakeWorkflow struct {
	task     *models.Task
	tasks    []models.PopulatedTask
	comments []models.PopulatedComment
	err      error

	lastActor  primitive.ObjectID
	lastTaskID string
	lastFilter services.TaskFilter
	lastInput  services.CreateTaskInput
	lastText   string
	lastTarget string
	lastAssign string
}

func (f *fakeWorkflow) CreateTask(ctx context.Context, actorID primitive.ObjectID, in services.CreateTaskInput) (*models.Task, error) {
	f.lastActor, f.lastInput = actorID, in
	return f.task, f.err
}

func (f *fakeWorkflow) AssignTask(ctx context.Context, actorID primitive.ObjectID, taskID, assignedUser string) (*models.Task, error) {
	f.lastActor, f.lastTaskID, f.lastTarget = actorID, taskID, assignedUser
	return f.task, f.err
}

func (f *fakeWorkflow) ApproveTask(ctx context.Context, actorID primitive.ObjectID, taskID, assignID string) (*models.Task, error) {
	f.lastActor, f.lastTaskID, f.lastAssign = actorID, taskID, assignID
	return f.task, f.err
}

func (f *fakeWorkflow) AcceptTask(ctx context.Context, actorID primitive.ObjectID, taskID string) (*models.Task, error) {
	f.lastActor, f.lastTaskID = actorID, taskID
	return f.task, f.err
}

func (f *fakeWorkflow) CommentTask(ctx context.Context, actorID primitive.ObjectID, taskID, text string, files []string) (*models.Task, error) {
	f.lastActor, f.lastTaskID, f.lastText = actorID, taskID, text
	return f.task, f.err
}

func (f *fakeWorkflow) GetMyTasks(ctx context.Context, actorID primitive.ObjectID) ([]models.PopulatedTask, error) {
	f.lastActor = actorID
	return f.tasks, f.err
}

func (f *fakeWorkflow) GetAllTasks(ctx context.Context, filter services.TaskFilter) ([]models.PopulatedTask, error) {
	f.lastFilter = filter
	return f.tasks, f.err
}

func (f *fakeWorkflow) GetTaskComments(ctx context.Context, taskID string) ([]models.PopulatedComment, error) {
	f.lastTaskID = taskID
	return f.comments, f.err
}

func authedRequest(method, target, body string) (*http.Request, *models.User) {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	user := &models.User{ID: primitive.NewObjectID(), Username: "ACME-jdoe"}
	return middleware.WithUser(r, user), user
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestCreateTask(t *testing.T) {
	fake := &fakeWorkflow{task: &models.Task{ID: primitive.NewObjectID(), Title: "Fix bug"}}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, user := authedRequest(http.MethodPost, "/api/task", `{"project":"p","assignedUser":"u","title":"Fix bug"}`)
	rec := httptest.NewRecorder()
	h.CreateTask(rec, r)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if fake.lastActor != user.ID {
		t.Error("acting identity not forwarded to the workflow")
	}
	if fake.lastInput.Title != "Fix bug" {
		t.Errorf("input title = %q", fake.lastInput.Title)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Task created successfully" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestCreateTask_NoIdentity(t *testing.T) {
	fake := &fakeWorkflow{}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r := httptest.NewRequest(http.MethodPost, "/api/task", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.CreateTask(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCreateTask_BadBody(t *testing.T) {
	fake := &fakeWorkflow{}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, _ := authedRequest(http.MethodPost, "/api/task", `{not json`)
	rec := httptest.NewRecorder()
	h.CreateTask(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateTask_ServiceError(t *testing.T) {
	fake := &fakeWorkflow{err: apperrors.NotFound("project not found")}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, _ := authedRequest(http.MethodPost, "/api/task", `{"project":"missing"}`)
	rec := httptest.NewRecorder()
	h.CreateTask(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if env := decodeEnvelope(t, rec); env.Message != "project not found" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestAssignTask_Forbidden(t *testing.T) {
	fake := &fakeWorkflow{err: apperrors.Forbidden("you are not allowed to perform this action")}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, _ := authedRequest(http.MethodPost, "/api/task/abc/assign", `{"assignedUser":"u2"}`)
	r = mux.SetURLVars(r, map[string]string{"taskId": "abc"})
	rec := httptest.NewRecorder()
	h.AssignTask(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if fake.lastTaskID != "abc" || fake.lastTarget != "u2" {
		t.Errorf("workflow called with taskID=%q target=%q", fake.lastTaskID, fake.lastTarget)
	}
}

func TestApproveTask(t *testing.T) {
	fake := &fakeWorkflow{task: &models.Task{ID: primitive.NewObjectID()}}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, user := authedRequest(http.MethodPost, "/api/task/abc/approve", `{"assignId":"rec1"}`)
	r = mux.SetURLVars(r, map[string]string{"taskId": "abc"})
	rec := httptest.NewRecorder()
	h.ApproveTask(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if fake.lastActor != user.ID || fake.lastTaskID != "abc" || fake.lastAssign != "rec1" {
		t.Errorf("workflow called with actor=%s taskID=%q assignID=%q", fake.lastActor.Hex(), fake.lastTaskID, fake.lastAssign)
	}
}

func TestAcceptTask(t *testing.T) {
	fake := &fakeWorkflow{task: &models.Task{Status: models.StatusInProgress}}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, _ := authedRequest(http.MethodPost, "/api/task/abc/accept", "")
	r = mux.SetURLVars(r, map[string]string{"taskId": "abc"})
	rec := httptest.NewRecorder()
	h.AcceptTask(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if env := decodeEnvelope(t, rec); env.Message != "Task accepted successfully" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestGetAllTask_ForwardsFilters(t *testing.T) {
	fake := &fakeWorkflow{tasks: []models.PopulatedTask{}}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, _ := authedRequest(http.MethodGet, "/api/task/all?priority=critical&status=open&project=p1", "")
	rec := httptest.NewRecorder()
	h.GetAllTask(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := services.TaskFilter{Project: "p1", Priority: "critical", Status: "open"}
	if fake.lastFilter != want {
		t.Errorf("filter = %+v, want %+v", fake.lastFilter, want)
	}
}

func TestCommentTask_JSONBody(t *testing.T) {
	fake := &fakeWorkflow{task: &models.Task{}}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, _ := authedRequest(http.MethodPost, "/api/task/abc/comment", `{"text":"looks good"}`)
	r = mux.SetURLVars(r, map[string]string{"taskId": "abc"})
	rec := httptest.NewRecorder()
	h.CommentTask(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if fake.lastText != "looks good" {
		t.Errorf("comment text = %q", fake.lastText)
	}
}

func TestCommentTask_RejectedCommentRemovesUploads(t *testing.T) {
	fake := &fakeWorkflow{err: apperrors.NotFound("task not found")}
	dir := t.TempDir()
	h := handlers.NewTaskHandler(fake, dir)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("text", "orphan check"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := w.CreateFormFile("files", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("attachment")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	w.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/task/abc/comment", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	r = middleware.WithUser(r, &models.User{ID: primitive.NewObjectID(), Username: "ACME-jdoe"})
	r = mux.SetURLVars(r, map[string]string{"taskId": "abc"})
	rec := httptest.NewRecorder()
	h.CommentTask(rec, r)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir still holds %d file(s) after a rejected comment", len(entries))
	}
}

func TestGetTaskComments(t *testing.T) {
	fake := &fakeWorkflow{comments: []models.PopulatedComment{{Text: "first"}}}
	h := handlers.NewTaskHandler(fake, t.TempDir())

	r, _ := authedRequest(http.MethodGet, "/api/task/abc/comments", "")
	r = mux.SetURLVars(r, map[string]string{"taskId": "abc"})
	rec := httptest.NewRecorder()
	h.GetTaskComments(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if fake.lastTaskID != "abc" {
		t.Errorf("taskID = %q", fake.lastTaskID)
	}
}

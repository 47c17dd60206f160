package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/logging"
	"github.com/raunak234362/WBT-OneLogin/middleware"
	"github.com/raunak234362/WBT-OneLogin/models"
	"github.com/raunak234362/WBT-OneLogin/response"
	"github.com/raunak234362/WBT-OneLogin/services"
	"github.com/raunak234362/WBT-OneLogin/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskWorkflow is the slice of the task service the HTTP layer consumes.
type TaskWorkflow interface {
	CreateTask(ctx context.Context, actorID primitive.ObjectID, in services.CreateTaskInput) (*models.Task, error)
	AssignTask(ctx context.Context, actorID primitive.ObjectID, taskID, assignedUser string) (*models.Task, error)
	ApproveTask(ctx context.Context, actorID primitive.ObjectID, taskID, assignID string) (*models.Task, error)
	AcceptTask(ctx context.Context, actorID primitive.ObjectID, taskID string) (*models.Task, error)
	CommentTask(ctx context.Context, actorID primitive.ObjectID, taskID, text string, files []string) (*models.Task, error)
	GetMyTasks(ctx context.Context, actorID primitive.ObjectID) ([]models.PopulatedTask, error)
	GetAllTasks(ctx context.Context, filter services.TaskFilter) ([]models.PopulatedTask, error)
	GetTaskComments(ctx context.Context, taskID string) ([]models.PopulatedComment, error)
}

type TaskHandler struct {
	service   TaskWorkflow
	uploadDir string
}

func NewTaskHandler(service TaskWorkflow, uploadDir string) *TaskHandler {
	return &TaskHandler{service: service, uploadDir: uploadDir}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var in services.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	task, err := h.service.CreateTask(r.Context(), actor.ID, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, task, "Task created successfully")
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	tasks, err := h.service.GetMyTasks(r.Context(), actor.ID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tasks, "Task fetched successfully")
}

func (h *TaskHandler) GetAllTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	filter := services.TaskFilter{
		Project:   r.URL.Query().Get("project"),
		CreatedBy: r.URL.Query().Get("createdBy"),
		Priority:  r.URL.Query().Get("priority"),
		Status:    r.URL.Query().Get("status"),
	}
	tasks, err := h.service.GetAllTasks(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tasks, "Task fetched successfully")
}

func (h *TaskHandler) AcceptTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	task, err := h.service.AcceptTask(r.Context(), actor.ID, mux.Vars(r)["taskId"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, task, "Task accepted successfully")
}

func (h *TaskHandler) ApproveTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var body struct {
		AssignID string `json:"assignId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	task, err := h.service.ApproveTask(r.Context(), actor.ID, mux.Vars(r)["taskId"], body.AssignID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, task, "Task approved successfully")
}

func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var body struct {
		AssignedUser string `json:"assignedUser"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	task, err := h.service.AssignTask(r.Context(), actor.ID, mux.Vars(r)["taskId"], body.AssignedUser)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, task, "Task assigned successfully, waiting for approval")
}

// CommentTask accepts either a multipart form with a "text" field and
// "files" attachments, or a plain JSON body with "text".
func (h *TaskHandler) CommentTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var text string
	var files []string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			response.Error(w, apperrors.InvalidInput("invalid multipart form"))
			return
		}
		text = r.FormValue("text")
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				response.Error(w, apperrors.Internal("failed to read uploaded file", err))
				return
			}
			path, err := utils.SaveUploadedFile(h.uploadDir, file, header)
			file.Close()
			if err != nil {
				response.Error(w, apperrors.Internal("failed to store uploaded file", err))
				return
			}
			files = append(files, path)
		}
	} else {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, apperrors.InvalidInput("invalid request body"))
			return
		}
		text = body.Text
	}

	task, err := h.service.CommentTask(r.Context(), actor.ID, mux.Vars(r)["taskId"], text, files)
	if err != nil {
		h.removeStoredFiles(files)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, task, "Task comment added successfully")
}

// removeStoredFiles deletes attachments already written to disk when the
// comment they belong to was rejected, so failed requests leave nothing
// behind in the upload dir.
func (h *TaskHandler) removeStoredFiles(files []string) {
	for _, f := range files {
		if err := os.Remove(filepath.Join(h.uploadDir, filepath.Base(f))); err != nil {
			logging.Logger.Warnf("Event ID: UPLOAD_CLEANUP_FAILED, Description: Failed to remove stored file %s: %v", f, err)
		}
	}
}

func (h *TaskHandler) GetTaskComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	comments, err := h.service.GetTaskComments(r.Context(), mux.Vars(r)["taskId"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, comments, "Task comments fetched successfully")
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/middleware"
	"github.com/raunak234362/WBT-OneLogin/response"
	"github.com/raunak234362/WBT-OneLogin/services"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var in services.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	project, err := h.service.CreateProject(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, project, "Project created successfully")
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	project, err := h.service.GetProject(r.Context(), mux.Vars(r)["projectId"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, project, "Project fetched successfully")
}

func (h *ProjectHandler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	projects, err := h.service.GetAllProjects(r.Context(), r.URL.Query().Get("company"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, projects, "Projects fetched successfully")
}

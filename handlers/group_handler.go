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

type GroupHandler struct {
	service *services.GroupService
}

func NewGroupHandler(service *services.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var in services.CreateGroupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	group, err := h.service.CreateGroup(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, group, "User group created successfully")
}

func (h *GroupHandler) GetGroupsByCompany(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	groups, err := h.service.GetGroupsByCompany(r.Context(), mux.Vars(r)["companyId"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, groups, "User groups fetched successfully")
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/middleware"
	"github.com/raunak234362/WBT-OneLogin/response"
	"github.com/raunak234362/WBT-OneLogin/services"
)

type FabricatorHandler struct {
	service *services.FabricatorService
}

func NewFabricatorHandler(service *services.FabricatorService) *FabricatorHandler {
	return &FabricatorHandler{service: service}
}

func (h *FabricatorHandler) CreateFabricator(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var in services.CreateFabricatorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	fabricator, err := h.service.CreateFabricator(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, fabricator, "Fabricator created successfully")
}

func (h *FabricatorHandler) GetFabricators(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	fabricators, err := h.service.GetFabricators(r.Context(), r.URL.Query().Get("company"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, fabricators, "Fabricators fetched successfully")
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/middleware"
	"github.com/raunak234362/WBT-OneLogin/models"
	"github.com/raunak234362/WBT-OneLogin/response"
	"github.com/raunak234362/WBT-OneLogin/services"
	"github.com/raunak234362/WBT-OneLogin/utils"

	"github.com/gorilla/mux"
)

type CompanyHandler struct {
	service   *services.CompanyService
	uploadDir string
}

func NewCompanyHandler(service *services.CompanyService, uploadDir string) *CompanyHandler {
	return &CompanyHandler{service: service, uploadDir: uploadDir}
}

// Register handles the multipart company registration form, including the
// required logo upload. This endpoint is unauthenticated: it creates the
// first user of a company.
func (h *CompanyHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid multipart form"))
		return
	}

	in := services.RegisterCompanyInput{
		Name:        r.FormValue("name"),
		CompanyID:   r.FormValue("id"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Address:     r.FormValue("address"),
		Website:     r.FormValue("website"),
		Established: r.FormValue("established"),
		Type:        r.FormValue("type"),
		Size:        r.FormValue("size"),
		Country:     r.FormValue("country"),
		Username:    r.FormValue("username"),
		Password:    r.FormValue("password"),
	}
	if primary, secondary := r.FormValue("colorCodePrimary"), r.FormValue("colorCodeSecondary"); primary != "" || secondary != "" {
		in.ColorCode = &models.ColorCode{Primary: primary, Secondary: secondary}
	}

	if file, header, err := r.FormFile("logo"); err == nil {
		path, err := utils.SaveUploadedFile(h.uploadDir, file, header)
		file.Close()
		if err != nil {
			response.Error(w, apperrors.Internal("failed to store company logo", err))
			return
		}
		in.LogoPath = path
	}

	result, err := h.service.RegisterCompanyAndUser(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result, "Company registered successfully, please enter OTP for verification")
}

func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	company, err := h.service.GetCompany(r.Context(), mux.Vars(r)["companyId"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, company, "Company fetched successfully")
}

func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var patch models.CompanyPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	company, err := h.service.UpdateCompany(r.Context(), mux.Vars(r)["companyId"], patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, company, "Company updated successfully")
}

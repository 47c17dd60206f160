package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/middleware"
	"github.com/raunak234362/WBT-OneLogin/response"
	"github.com/raunak234362/WBT-OneLogin/services"
	"github.com/raunak234362/WBT-OneLogin/utils"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	service   *services.UserService
	uploadDir string
}

func NewUserHandler(service *services.UserService, uploadDir string) *UserHandler {
	return &UserHandler{service: service, uploadDir: uploadDir}
}

func setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: accessToken, HttpOnly: true, Secure: true, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: refreshToken, HttpOnly: true, Secure: true, Path: "/"})
}

func clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "", MaxAge: -1, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "", MaxAge: -1, Path: "/"})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	result, err := h.service.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		response.Error(w, err)
		return
	}

	setAuthCookies(w, result.AccessToken, result.RefreshToken)
	response.JSON(w, http.StatusOK, result, "User logged in successfully")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	if err := h.service.Logout(r.Context(), actor.ID); err != nil {
		response.Error(w, err)
		return
	}

	clearAuthCookies(w)
	response.JSON(w, http.StatusOK, struct{}{}, "User logged out successfully")
}

func (h *UserHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var body struct {
		OTP string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	user, err := h.service.VerifyOTP(r.Context(), actor.ID, body.OTP)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"username": user.Username}, "User verified successfully")
}

func (h *UserHandler) NewOTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	user, err := h.service.IssueNewOTP(r.Context(), actor.ID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"username": user.Username}, "OTP sent successfully")
}

// RegisterNewUser decodes the default fields plus any extra fields the
// target group's schema defines; the extras travel in the same JSON object.
func (h *UserHandler) RegisterNewUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		response.Error(w, apperrors.InvalidInput("invalid request body"))
		return
	}

	in := services.RegisterUserInput{Extras: raw}
	if v, ok := raw["username"].(string); ok {
		in.Username = v
	}
	if v, ok := raw["email"].(string); ok {
		in.Email = v
	}
	if v, ok := raw["password"].(string); ok {
		in.Password = v
	}

	user, err := h.service.RegisterNewUser(r.Context(), actor, mux.Vars(r)["groupId"], in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user, "User added successfully")
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	user, err := h.service.GetUser(r.Context(), actor.ID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user, "User fetched successfully")
}

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	filter := services.UserFilter{
		Group:    r.URL.Query().Get("group"),
		Verified: r.URL.Query().Get("verified"),
	}
	users, err := h.service.GetAllUsers(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, users, "Users retrieved successfully")
}

func (h *UserHandler) GetUsersByGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	users, err := h.service.GetUsersByGroup(r.Context(), mux.Vars(r)["groupId"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, users, "Users retrieved successfully")
}

func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CurrentUser(r); !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	user, err := h.service.GetUserByUsername(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user, "User fetched successfully")
}

// UpdateUser accepts a multipart form (optional profileImage upload plus
// patch fields) or a JSON patch body.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r)
	if !ok {
		response.Error(w, apperrors.Unauthorized("unauthorized"))
		return
	}

	var patch services.UserPatch

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			response.Error(w, apperrors.InvalidInput("invalid multipart form"))
			return
		}
		if email := r.FormValue("email"); email != "" {
			patch.Email = &email
		}
		if file, header, err := r.FormFile("profileImage"); err == nil {
			path, err := utils.SaveUploadedFile(h.uploadDir, file, header)
			file.Close()
			if err != nil {
				response.Error(w, apperrors.Internal("failed to store profile image", err))
				return
			}
			patch.ProfileImage = &path
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			response.Error(w, apperrors.InvalidInput("invalid request body"))
			return
		}
	}

	user, err := h.service.UpdateUser(r.Context(), actor, mux.Vars(r)["username"], patch)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user, "User updated successfully")
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/betting-pool/middleware"
	"github.com/Dosada05/betting-pool/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.SignupInput

	if err := readJSON(w, r, &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	for _, field := range []struct{ path, value string }{
		{"/name", input.Name},
		{"/first_name", input.FirstName},
		{"/last_name", input.LastName},
	} {
		if field.value == "" {
			mapServiceErrorToHTTP(w, r, bodyError(field.path, "minLength", "must not be empty"))
			return
		}
	}

	result, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusCreated, authOut{ID: result.User.ID, Name: result.User.Name, Token: result.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	if err := readJSON(w, r, &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, authOut{ID: result.User.ID, Name: result.User.Name, Token: result.Token})
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidToken)
		return
	}
	successResponse(w, r, http.StatusOK, userOut{ID: user.ID, Name: user.Name})
}

type changePasswordInput struct {
	Password string `json:"password"`
}

// ChangePassword меняет пароль пользователя {id}. Доступно только администратору.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input changePasswordInput
	if err := readJSON(w, r, &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	user, err := h.authService.ChangePassword(r.Context(), id, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, r, http.StatusOK, userOut{ID: user.ID, Name: user.Name})
}

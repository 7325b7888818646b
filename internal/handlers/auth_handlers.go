package handlers

import (
	"net/http"
	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/service"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
	}
}

func (s *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request dto.RegisterRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	request.Normalize()
	if !validateRequest(w, r, request) {
		return
	}

	result, err := s.AuthService.Register(r.Context(), service.RegisterInput{
		Username: request.Username,
		Email:    request.Email,
		Password: request.Password,
	})
	if err != nil {
		handleError(w, r, err, "register")
		return
	}

	responseWithJSON(w, http.StatusCreated,
		toPayload("message", "User registered successfully"),
		toPayload("user", dto.FromUser(result.User)),
		toPayload("token", result.Token),
	)
}

func (s *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	request.Normalize()
	if !validateRequest(w, r, request) {
		return
	}

	result, err := s.AuthService.Login(r.Context(), service.LoginInput{
		Email:    request.Email,
		Password: request.Password,
	})
	if err != nil {
		handleError(w, r, err, "login")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Login successful"),
		toPayload("user", dto.FromUser(result.User)),
		toPayload("token", result.Token),
	)
}

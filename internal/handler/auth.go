package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/sqlarena/sqlarena/internal/handler/dto"
	"github.com/sqlarena/sqlarena/internal/response"
	"github.com/sqlarena/sqlarena/internal/service"
	"github.com/sqlarena/sqlarena/internal/validation"
)

// Response messages for the user endpoints.
const (
	MsgRegistered       = "User registered successfully"
	MsgLoggedIn         = "Login successful"
	MsgRegisterInternal = "An error occurred during registration"
	MsgLoginInternal    = "An error occurred during login"
)

// AuthService is the business logic behind the user endpoints.
type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error)
}

// AuthHandler serves registration and login.
type AuthHandler struct {
	service   AuthService
	validator *validation.Validator
	reporter  *response.Reporter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, validator *validation.Validator, reporter *response.Reporter) *AuthHandler {
	return &AuthHandler{
		service:   svc,
		validator: validator,
		reporter:  reporter,
	}
}

// Register creates an account.
// POST /api/users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	input := validation.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if errs := h.validator.Register(&input); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	res, err := h.service.Register(r.Context(), service.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			response.Error(w, http.StatusConflict, service.ErrUserExists.Error())
			return
		}
		h.reporter.Internal(w, r, err, MsgRegisterInternal)
		return
	}

	response.Success(w, http.StatusCreated, MsgRegistered, dto.ToRegisterResponse(res.User, res.Token))
}

// Login authenticates an account.
// POST /api/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	input := validation.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}
	if errs := h.validator.Login(&input); errs.HasErrors() {
		response.ValidationFailed(w, errs)
		return
	}

	res, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
			return
		}
		h.reporter.Internal(w, r, err, MsgLoginInternal)
		return
	}

	response.Success(w, http.StatusOK, MsgLoggedIn, dto.ToLoginResponse(res.User, res.Token))
}

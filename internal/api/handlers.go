package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/training-portal/internal/middleware"
	"github.com/training-portal/internal/model"
	"github.com/training-portal/internal/service"
	"github.com/training-portal/internal/storage"
)

// Handler contains the employee-facing API handlers
type Handler struct {
	employeeRepo *storage.EmployeeRepository
	engine       *service.EnrollmentEngine
	reset        *service.ResetService
	auth         *middleware.AuthMiddleware
}

// NewHandler creates a new API handler
func NewHandler(
	employeeRepo *storage.EmployeeRepository,
	engine *service.EnrollmentEngine,
	reset *service.ResetService,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		employeeRepo: employeeRepo,
		engine:       engine,
		reset:        reset,
		auth:         auth,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Auth handlers

// Login godoc
// @Summary Employee login
// @Description Verify credentials, issue a signed session token and set the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	// The response never says whether the email exists or the password was
	// wrong; both fail the same way.
	emp, err := h.employeeRepo.FindByEmail(r.Context(), req.Email)
	if err != nil || emp == nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !h.employeeRepo.ValidatePassword(emp, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := h.auth.GenerateToken(emp)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.auth.SetSessionCookie(w, token, expiresAt)

	respondJSON(w, http.StatusOK, model.LoginResponse{
		Token:      token,
		ExpiresAt:  expiresAt,
		RedirectTo: middleware.RoleHome(emp.Role),
		User:       emp,
	})
}

// Logout godoc
// @Summary Logout
// @Description Clear the session cookie
// @Tags Authentication
// @Produce json
// @Success 204 "No content"
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// RequestReset godoc
// @Summary Request a password reset
// @Description Issue a single-use reset token for the given email; always reports success
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.ResetRequest true "Account email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/reset-request [post]
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req model.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	link, err := h.reset.IssueReset(r.Context(), req.Email)
	if err != nil {
		log.Printf("Failed to issue reset token: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to process request")
		return
	}

	// Same response whether or not the email exists. Mail delivery is
	// external; the link rides along for environments without it.
	resp := map[string]string{"message": "if the email is registered, reset instructions have been sent"}
	if link != "" {
		resp["debug_link"] = link
	}
	respondJSON(w, http.StatusOK, resp)
}

// SetPassword godoc
// @Summary Set a new password
// @Description Consume an invite or reset token and set the account password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.SetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Weak password or invalid token"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/set-password [post]
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "token and password are required")
		return
	}

	if err := h.reset.Consume(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTokenInvalid):
			respondError(w, http.StatusBadRequest, "invalid or expired token")
		default:
			log.Printf("Failed to consume reset token: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to set password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password set, you can now log in"})
}

// GetProfile godoc
// @Summary Get the current employee
// @Description Return the profile of the authenticated employee
// @Tags Authentication
// @Produce json
// @Success 200 {object} model.Employee
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Employee not found"
// @Security BearerAuth
// @Router /auth/profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	emp, err := h.employeeRepo.FindByID(r.Context(), claims.UserID)
	if err != nil || emp == nil {
		respondError(w, http.StatusNotFound, "employee not found")
		return
	}

	respondJSON(w, http.StatusOK, emp)
}

// Enrollment handlers

// GetDashboard godoc
// @Summary Employee dashboard
// @Description Active courses with the caller's derived enrollment status and per-status counts
// @Tags Enrollments
// @Produce json
// @Success 200 {object} model.DashboardResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	dashboard, err := h.engine.Dashboard(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("Failed to build dashboard: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Create an enrollment for the authenticated employee, snapshotting the course validity window
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param request body model.EnrollRequest true "Course to enroll in"
// @Success 201 {object} model.Enrollment
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Course not available"
// @Failure 409 {object} map[string]string "Already enrolled"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /enrollments [post]
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CourseID == "" {
		respondError(w, http.StatusBadRequest, "course_id is required")
		return
	}

	e, err := h.engine.Enroll(r.Context(), claims.UserID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseUnavailable):
			respondError(w, http.StatusNotFound, "course not available")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			respondError(w, http.StatusConflict, "already enrolled in this course")
		default:
			log.Printf("Failed to enroll: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to enroll")
		}
		return
	}

	respondJSON(w, http.StatusCreated, e)
}

// CompleteEnrollment godoc
// @Summary Mark an enrollment completed
// @Description Set completed_at on the enrollment; idempotent, late completion allowed
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} model.Enrollment
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not your enrollment"
// @Failure 404 {object} map[string]string "Enrollment not found"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /enrollments/{id}/complete [post]
func (h *Handler) CompleteEnrollment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "enrollment id is required")
		return
	}

	// Employees may only complete their own enrollments; admins may record
	// a completion for anyone. Ownership is checked before any write.
	existing, err := h.engine.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEnrollmentNotFound) {
			respondError(w, http.StatusNotFound, "enrollment not found")
			return
		}
		log.Printf("Failed to load enrollment: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to complete enrollment")
		return
	}
	if existing.EmployeeID != claims.UserID && claims.Role != model.RoleAdmin {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	e, err := h.engine.Complete(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEnrollmentNotFound) {
			respondError(w, http.StatusNotFound, "enrollment not found")
			return
		}
		log.Printf("Failed to complete enrollment: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to complete enrollment")
		return
	}

	respondJSON(w, http.StatusOK, e)
}

// Health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AppShell serves the page surface behind the access controller. Rendering
// lives in the front-end; this just tells the client which page it landed on
// and who it is.
func (h *Handler) AppShell(w http.ResponseWriter, r *http.Request) {
	page := strings.TrimSuffix(r.URL.Path, "/")
	if page == "" {
		page = "/"
	}

	resp := map[string]interface{}{"page": page}
	if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
		resp["user_id"] = claims.UserID
		resp["role"] = claims.Role
	}
	respondJSON(w, http.StatusOK, resp)
}

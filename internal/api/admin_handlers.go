package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/training-portal/internal/model"
	"github.com/training-portal/internal/service"
	"github.com/training-portal/internal/storage"
)

// AdminHandler contains the admin CRUD handlers. Every delete goes through
// the integrity guard before the repository is touched.
type AdminHandler struct {
	employeeRepo   *storage.EmployeeRepository
	teacherRepo    *storage.TeacherRepository
	categoryRepo   *storage.CategoryRepository
	courseRepo     *storage.CourseRepository
	enrollmentRepo *storage.EnrollmentRepository
	guard          *service.IntegrityGuard
	reset          *service.ResetService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	employeeRepo *storage.EmployeeRepository,
	teacherRepo *storage.TeacherRepository,
	categoryRepo *storage.CategoryRepository,
	courseRepo *storage.CourseRepository,
	enrollmentRepo *storage.EnrollmentRepository,
	guard *service.IntegrityGuard,
	reset *service.ResetService,
) *AdminHandler {
	return &AdminHandler{
		employeeRepo:   employeeRepo,
		teacherRepo:    teacherRepo,
		categoryRepo:   categoryRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		guard:          guard,
		reset:          reset,
	}
}

// Employee handlers

// CreateEmployee godoc
// @Summary Create an employee
// @Description Create an employee account without a password and issue its invite link
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body model.CreateEmployeeRequest true "Employee details"
// @Success 201 {object} model.CreateEmployeeResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Email already registered"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/employees [post]
func (h *AdminHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Surname == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name, surname and email are required")
		return
	}
	if !isValidEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if req.Role != "" && req.Role != model.RoleAdmin && req.Role != model.RoleEmployee {
		respondError(w, http.StatusBadRequest, "role must be admin or employee")
		return
	}

	emp, err := h.employeeRepo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		log.Printf("Failed to create employee: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create employee")
		return
	}

	link, err := h.reset.IssueInvite(r.Context(), emp.ID)
	if err != nil {
		log.Printf("Failed to issue invite for %s: %v", emp.Email, err)
		respondError(w, http.StatusInternalServerError, "employee created but invite failed")
		return
	}

	respondJSON(w, http.StatusCreated, model.CreateEmployeeResponse{
		Employee:   emp,
		InviteLink: link,
	})
}

// ListEmployees godoc
// @Summary List employees
// @Tags Admin
// @Produce json
// @Success 200 {array} model.Employee
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/employees [get]
func (h *AdminHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employeeRepo.List(r.Context())
	if err != nil {
		log.Printf("Failed to list employees: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}
	respondJSON(w, http.StatusOK, employees)
}

// Teacher handlers

// CreateTeacher godoc
// @Summary Create a teacher
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body model.CreateTeacherRequest true "Teacher details"
// @Success 201 {object} model.Teacher
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/teachers [post]
func (h *AdminHandler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Surname == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name, surname and email are required")
		return
	}

	t, err := h.teacherRepo.Create(r.Context(), &req)
	if err != nil {
		log.Printf("Failed to create teacher: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create teacher")
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// ListTeachers godoc
// @Summary List teachers with course counts
// @Tags Admin
// @Produce json
// @Success 200 {array} model.Teacher
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/teachers [get]
func (h *AdminHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.teacherRepo.List(r.Context())
	if err != nil {
		log.Printf("Failed to list teachers: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list teachers")
		return
	}
	respondJSON(w, http.StatusOK, teachers)
}

// DeleteTeacher godoc
// @Summary Delete a teacher
// @Description Refused while any course references the teacher
// @Tags Admin
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Teacher not found"
// @Failure 409 {object} map[string]string "Delete blocked by references"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/teachers/{id} [delete]
func (h *AdminHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	h.deleteGuarded(w, r, service.KindTeacher, func(id string) error {
		return h.teacherRepo.Delete(r.Context(), id)
	})
}

// Category handlers

// CreateCategory godoc
// @Summary Create a category
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body model.CreateCategoryRequest true "Category details"
// @Success 201 {object} model.Category
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/categories [post]
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.categoryRepo.Create(r.Context(), &req)
	if err != nil {
		log.Printf("Failed to create category: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// ListCategories godoc
// @Summary List categories with course counts
// @Tags Admin
// @Produce json
// @Success 200 {array} model.Category
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/categories [get]
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.List(r.Context())
	if err != nil {
		log.Printf("Failed to list categories: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Refused while any course references the category
// @Tags Admin
// @Produce json
// @Param id path string true "Category ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Category not found"
// @Failure 409 {object} map[string]string "Delete blocked by references"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/categories/{id} [delete]
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteGuarded(w, r, service.KindCategory, func(id string) error {
		return h.categoryRepo.Delete(r.Context(), id)
	})
}

// Course handlers

// CreateCourse godoc
// @Summary Create a course
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body model.CreateCourseRequest true "Course details"
// @Success 201 {object} model.Course
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/courses [post]
func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.TeacherID == "" {
		respondError(w, http.StatusBadRequest, "title and teacher_id are required")
		return
	}
	if req.ValidityDays <= 0 {
		respondError(w, http.StatusBadRequest, "validity_days must be positive")
		return
	}

	c, err := h.courseRepo.Create(r.Context(), &req)
	if err != nil {
		log.Printf("Failed to create course: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create course")
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// ListCourses godoc
// @Summary List all courses
// @Tags Admin
// @Produce json
// @Success 200 {array} model.Course
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/courses [get]
func (h *AdminHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseRepo.List(r.Context())
	if err != nil {
		log.Printf("Failed to list courses: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}
	respondJSON(w, http.StatusOK, courses)
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Changing validity_days never alters already-issued enrollments
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body model.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} model.Course
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/courses/{id} [put]
func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "course id is required")
		return
	}

	var req model.UpdateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ValidityDays != nil && *req.ValidityDays <= 0 {
		respondError(w, http.StatusBadRequest, "validity_days must be positive")
		return
	}

	c, err := h.courseRepo.Update(r.Context(), id, &req)
	if err != nil {
		log.Printf("Failed to update course: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to update course")
		return
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "course not found")
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Refused while any enrollment references the course, whatever its status
// @Tags Admin
// @Produce json
// @Param id path string true "Course ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Delete blocked by references"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/courses/{id} [delete]
func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	h.deleteGuarded(w, r, service.KindCourse, func(id string) error {
		return h.courseRepo.Delete(r.Context(), id)
	})
}

// ListEnrollments godoc
// @Summary List all enrollments
// @Description Every enrollment with employee/course data and derived status
// @Tags Admin
// @Produce json
// @Success 200 {array} model.Enrollment
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /admin/enrollments [get]
func (h *AdminHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.enrollmentRepo.ListAll(r.Context())
	if err != nil {
		log.Printf("Failed to list enrollments: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list enrollments")
		return
	}
	respondJSON(w, http.StatusOK, enrollments)
}

// deleteGuarded runs the integrity check and, only when it passes, the
// actual delete.
func (h *AdminHandler) deleteGuarded(w http.ResponseWriter, r *http.Request, kind service.EntityKind, del func(id string) error) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.guard.CanDelete(r.Context(), kind, id); err != nil {
		if errors.Is(err, service.ErrDeleteBlocked) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		log.Printf("Delete check failed for %s %s: %v", kind, id, err)
		respondError(w, http.StatusInternalServerError, "failed to check references")
		return
	}

	if err := del(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		log.Printf("Failed to delete %s %s: %v", kind, id, err)
		respondError(w, http.StatusInternalServerError, "failed to delete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	dot := strings.LastIndex(email, ".")
	return at > 0 && dot > at+1 && dot < len(email)-1
}

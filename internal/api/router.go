package api

import (
	"net/http"

	"github.com/training-portal/internal/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates a new HTTP router with all routes. API routes enforce
// their own authentication; every page route goes through the access
// controller first.
func NewRouter(h *Handler, ah *AdminHandler, auth *middleware.AuthMiddleware, access *middleware.AccessController) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/v1/auth/reset-request", h.RequestReset)
	mux.HandleFunc("POST /api/v1/auth/set-password", h.SetPassword)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Authenticated employee routes
	mux.Handle("GET /api/v1/auth/profile", auth.Authenticate(http.HandlerFunc(h.GetProfile)))
	mux.Handle("GET /api/v1/dashboard", auth.Authenticate(http.HandlerFunc(h.GetDashboard)))
	mux.Handle("POST /api/v1/enrollments", auth.Authenticate(http.HandlerFunc(h.Enroll)))
	mux.Handle("POST /api/v1/enrollments/{id}/complete", auth.Authenticate(http.HandlerFunc(h.CompleteEnrollment)))

	// Admin routes
	admin := func(fn http.HandlerFunc) http.Handler {
		return auth.Authenticate(auth.RequireAdmin(fn))
	}
	mux.Handle("POST /api/v1/admin/employees", admin(ah.CreateEmployee))
	mux.Handle("GET /api/v1/admin/employees", admin(ah.ListEmployees))
	mux.Handle("POST /api/v1/admin/teachers", admin(ah.CreateTeacher))
	mux.Handle("GET /api/v1/admin/teachers", admin(ah.ListTeachers))
	mux.Handle("DELETE /api/v1/admin/teachers/{id}", admin(ah.DeleteTeacher))
	mux.Handle("POST /api/v1/admin/categories", admin(ah.CreateCategory))
	mux.Handle("GET /api/v1/admin/categories", admin(ah.ListCategories))
	mux.Handle("DELETE /api/v1/admin/categories/{id}", admin(ah.DeleteCategory))
	mux.Handle("POST /api/v1/admin/courses", admin(ah.CreateCourse))
	mux.Handle("GET /api/v1/admin/courses", admin(ah.ListCourses))
	mux.Handle("PUT /api/v1/admin/courses/{id}", admin(ah.UpdateCourse))
	mux.Handle("DELETE /api/v1/admin/courses/{id}", admin(ah.DeleteCourse))
	mux.Handle("GET /api/v1/admin/enrollments", admin(ah.ListEnrollments))

	// Everything else is the page surface behind the access controller.
	mux.HandleFunc("/", h.AppShell)

	// Apply global middleware; the access controller sits outermost so its
	// classification runs before anything else.
	handler := access.Guard(middleware.CORS(middleware.JSON(middleware.Logger(mux))))

	return handler
}

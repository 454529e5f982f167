package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RanaKhaled2002/Student-Management-System/internal/auth"
	"github.com/RanaKhaled2002/Student-Management-System/internal/config"
	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
	"github.com/RanaKhaled2002/Student-Management-System/internal/repository"
)

// TokenLedger is the revocation ledger as the admission gate sees it.
type TokenLedger interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

var revokedRejections = promauto.NewCounter(prometheus.CounterOpts{
	Name: "revoked_token_rejections_total",
	Help: "Requests rejected because the bearer token was revoked.",
})

var sessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sessions_issued_total",
	Help: "Session tokens issued on successful login.",
})

type Server struct {
	cfg    config.Config
	store  *repository.Store
	ledger TokenLedger
}

func NewServer(cfg config.Config, store *repository.Store, ledger TokenLedger) *Server {
	return &Server{cfg: cfg, store: store, ledger: ledger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// The revocation gate runs on every request, before signature
	// verification and role checks.
	r.Use(s.revocationGate)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.With(s.authMiddleware).Post("/auth/logout", s.handleLogout)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Get("/auth/pending", s.handleListPending)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Post("/auth/approve/{accountId}", s.handleApprove)

	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleStudent)).Post("/student", s.handleCreateStudent)
	r.With(s.authMiddleware).Get("/students", s.handleListStudents)
	r.With(s.authMiddleware).Get("/student/{studentId}", s.handleGetStudent)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleStudent)).Put("/student/{studentId}", s.handleUpdateStudent)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Delete("/student/{studentId}", s.handleDeleteStudent)

	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Post("/teacher", s.handleCreateTeacher)
	r.With(s.authMiddleware).Get("/teachers", s.handleListTeachers)
	r.With(s.authMiddleware).Get("/teacher/{teacherId}", s.handleGetTeacher)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Put("/teacher/{teacherId}", s.handleUpdateTeacher)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Delete("/teacher/{teacherId}", s.handleDeleteTeacher)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Post("/teacher/{teacherId}/course/{courseId}", s.handleAssignCourse)

	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Post("/course", s.handleCreateCourse)
	r.With(s.authMiddleware).Get("/courses", s.handleListCourses)
	r.With(s.authMiddleware).Get("/course/{courseId}", s.handleGetCourse)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Put("/course/{courseId}", s.handleUpdateCourse)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Delete("/course/{courseId}", s.handleDeleteCourse)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Delete("/course/{courseId}/teacher", s.handleUnassignTeacher)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Get("/course/{courseId}/students", s.handleCourseStudents)
	r.With(s.authMiddleware).Get("/course/{courseId}/teacher", s.handleCourseTeacher)

	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Post("/enrollment", s.handleEnroll)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Get("/enrollments", s.handleListEnrollments)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Put("/enrollment/grade", s.handleAddOrUpdateGrade)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Delete("/enrollment/{studentId}/{courseId}", s.handleDeleteGrade)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Get("/enrollments/student/{studentId}", s.handleGradesByStudent)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin, model.RoleTeacher)).Get("/enrollments/course/{courseId}", s.handleGradesByCourse)

	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Get("/data/export/students", s.handleExportStudents)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Post("/data/import/students", s.handleImportStudents)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Get("/data/export/teachers", s.handleExportTeachers)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Post("/data/import/teachers", s.handleImportTeachers)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Get("/data/export/courses", s.handleExportCourses)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Post("/data/import/courses", s.handleImportCourses)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Get("/data/export/grades", s.handleExportGrades)
	r.With(s.authMiddleware, s.requireRoles(model.RoleAdmin)).Post("/data/import/grades", s.handleImportGrades)

	return r
}

// revocationGate rejects revoked sessions before any other processing.
// Requests without a bearer token pass through; public routes exist and
// missing credentials are handled by authMiddleware where required. A
// ledger lookup failure rejects the request: the gate never assumes
// non-revoked.
func (s *Server) revocationGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		revoked, err := s.ledger.IsRevoked(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		if revoked {
			revokedRejections.Inc()
			writeError(w, http.StatusUnauthorized, "token_revoked")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTAudience, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil || !contains(roles, claims.Role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

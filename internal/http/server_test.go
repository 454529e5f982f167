package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RanaKhaled2002/Student-Management-System/internal/db"
	"github.com/RanaKhaled2002/Student-Management-System/internal/model"
	"github.com/RanaKhaled2002/Student-Management-System/internal/repository"
	"github.com/RanaKhaled2002/Student-Management-System/internal/revocation"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	url := os.Getenv("STUDENT_MANAGEMENT_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("STUDENT_MANAGEMENT_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	return pool
}

func postJSON(t *testing.T, url, token string, body interface{}) (*http.Response, map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode error: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	payload := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	resp.Body.Close()
	return resp, payload
}

func uploadCSV(t *testing.T, url, token, contents string) (*http.Response, map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("form error: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("form error: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("form error: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	payload := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	resp.Body.Close()
	return resp, payload
}

func getBody(t *testing.T, url, token string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	resp.Body.Close()
	return resp, string(body)
}

func TestAccountLifecycle(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	cfg := testConfig()
	store := repository.NewStore(pool)
	ledger := revocation.NewLedger(store, nil)
	server := NewServer(cfg, store, ledger)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	email := fmt.Sprintf("student.%d@example.local", time.Now().UnixNano())
	adminToken := mustToken(t, cfg, "admin@example.local", model.RoleAdmin)

	// Register creates a pending account and issues no session.
	resp, payload := postJSON(t, app.URL+"/auth/register", "", map[string]string{
		"email":    email,
		"password": "pw",
		"role":     "Student",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["status"] != "pending_admin_approval" {
		t.Fatalf("expected pending status, got %v", payload)
	}

	// Second registration with the same email (different case) conflicts.
	resp, payload = postJSON(t, app.URL+"/auth/register", "", map[string]string{
		"email":    "STUDENT" + email[7:],
		"password": "pw",
		"role":     "Student",
	})
	if resp.StatusCode != http.StatusBadRequest || payload["error"] != "user_already_exists" {
		t.Fatalf("expected duplicate rejection, got %d %v", resp.StatusCode, payload)
	}

	// Unknown role is rejected.
	resp, payload = postJSON(t, app.URL+"/auth/register", "", map[string]string{
		"email":    "other." + email,
		"password": "pw",
		"role":     "principal",
	})
	if resp.StatusCode != http.StatusBadRequest || payload["error"] != "invalid_role" {
		t.Fatalf("expected invalid_role, got %d %v", resp.StatusCode, payload)
	}

	// Pending accounts cannot authenticate.
	resp, payload = postJSON(t, app.URL+"/auth/login", "", map[string]string{
		"email":    email,
		"password": "pw",
	})
	if resp.StatusCode != http.StatusUnauthorized || payload["error"] != "pending_approval" {
		t.Fatalf("expected pending_approval, got %d %v", resp.StatusCode, payload)
	}

	// Wrong password and unknown email are indistinguishable.
	resp, wrongPassword := postJSON(t, app.URL+"/auth/login", "", map[string]string{
		"email":    "nobody@example.local",
		"password": "pw",
	})
	if resp.StatusCode != http.StatusUnauthorized || wrongPassword["error"] != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %d %v", resp.StatusCode, wrongPassword)
	}

	// Find the pending account id and approve it.
	req, err := http.NewRequest(http.MethodGet, app.URL+"/auth/pending", nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+adminToken)
	pendingResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	var pending []pendingAccount
	if err := json.NewDecoder(pendingResp.Body).Decode(&pending); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	pendingResp.Body.Close()

	var accountID string
	for _, account := range pending {
		if account.Email == email {
			accountID = account.ID
		}
	}
	if accountID == "" {
		t.Fatalf("registered account not in pending list")
	}

	resp, _ = postJSON(t, app.URL+"/auth/approve/"+accountID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Approving again is a no-op success.
	resp, _ = postJSON(t, app.URL+"/auth/approve/"+accountID, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected idempotent approve, got %d", resp.StatusCode)
	}

	// Approving an unknown id is 404.
	resp, _ = postJSON(t, app.URL+"/auth/approve/00000000-0000-0000-0000-000000000000", adminToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	// Wrong password after approval still merges into invalid_credentials.
	resp, wrongAfter := postJSON(t, app.URL+"/auth/login", "", map[string]string{
		"email":    email,
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized || wrongAfter["error"] != wrongPassword["error"] {
		t.Fatalf("expected merged error kind, got %d %v", resp.StatusCode, wrongAfter)
	}

	// Correct credentials now succeed with the registered role.
	resp, login := postJSON(t, app.URL+"/auth/login", "", map[string]string{
		"email":    email,
		"password": "pw",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if login["role"] != model.RoleStudent || login["token"] == "" {
		t.Fatalf("unexpected login response: %v", login)
	}
	token := login["token"]

	// The session is admitted on a student-permitted route.
	resp, _ = postJSON(t, app.URL+"/student", token, map[string]string{
		"fullName": "Test Student",
		"email":    "roster." + email,
		"dob":      "2000-01-31",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	// A student session on an admin-only route is forbidden, not
	// unauthorized.
	req, err = http.NewRequest(http.MethodGet, app.URL+"/auth/pending", nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	forbiddenResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	forbiddenResp.Body.Close()
	if forbiddenResp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", forbiddenResp.StatusCode)
	}

	// Logout revokes the session before its natural expiry.
	resp, _ = postJSON(t, app.URL+"/auth/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp, payload = postJSON(t, app.URL+"/student", token, map[string]string{
		"fullName": "Test Student",
		"email":    "again." + email,
		"dob":      "2000-01-31",
	})
	if resp.StatusCode != http.StatusUnauthorized || payload["error"] != "token_revoked" {
		t.Fatalf("expected revoked rejection, got %d %v", resp.StatusCode, payload)
	}

	// Logging out twice stays a no-op for the ledger; the gate keeps
	// rejecting the revoked session at its first checkpoint.
	resp, _ = postJSON(t, app.URL+"/auth/logout", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGradesCSVImportExport(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	cfg := testConfig()
	store := repository.NewStore(pool)
	ledger := revocation.NewLedger(store, nil)
	server := NewServer(cfg, store, ledger)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	adminToken := mustToken(t, cfg, "admin@example.local", model.RoleAdmin)
	suffix := time.Now().UnixNano()
	email := fmt.Sprintf("grades.%d@example.local", suffix)
	title := fmt.Sprintf("Algebra %d", suffix)

	resp, created := postJSON(t, app.URL+"/student", adminToken, map[string]string{
		"fullName": "Grade Student",
		"email":    email,
		"dob":      "2001-05-20",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	studentID := created["id"]

	resp, created = postJSON(t, app.URL+"/course", adminToken, map[string]string{
		"title":       title,
		"description": "intro",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	courseID := created["id"]

	// Importing a grade enrolls the student when no enrollment exists.
	contents := "studentEmail,courseTitle,grade\n" + email + "," + title + ",91.5\n"
	resp, payload := uploadCSV(t, app.URL+"/data/import/grades", adminToken, contents)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", resp.StatusCode, payload)
	}

	resp, body := getBody(t, app.URL+"/data/export/grades", adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, email+","+title+",91.5") {
		t.Fatalf("export missing imported grade, got %q", body)
	}

	// A file with any unresolvable row is rejected whole; the valid
	// first row must not be applied.
	contents = "studentEmail,courseTitle,grade\n" +
		email + "," + title + ",50\n" +
		email + ",no-such-course,60\n"
	resp, payload = uploadCSV(t, app.URL+"/data/import/grades", adminToken, contents)
	if resp.StatusCode != http.StatusBadRequest || payload["error"] != "unknown_course_row_3" {
		t.Fatalf("expected whole-file rejection, got %d %v", resp.StatusCode, payload)
	}

	enrollment, err := store.GetEnrollment(context.Background(), studentID, courseID)
	if err != nil {
		t.Fatalf("enrollment lookup error: %v", err)
	}
	if enrollment.Grade == nil || *enrollment.Grade != 91.5 {
		t.Fatalf("rejected import must leave grades untouched, got %v", enrollment.Grade)
	}
}

func TestStudentsCSVImportRejectsWholeFile(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	cfg := testConfig()
	store := repository.NewStore(pool)
	ledger := revocation.NewLedger(store, nil)
	server := NewServer(cfg, store, ledger)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	adminToken := mustToken(t, cfg, "admin@example.local", model.RoleAdmin)
	email := fmt.Sprintf("atomic.%d@example.local", time.Now().UnixNano())

	contents := "fullName,email,dob\n" +
		"Valid Person," + email + ",2000-01-01\n" +
		"Broken Person,,not-a-date\n"
	resp, payload := uploadCSV(t, app.URL+"/data/import/students", adminToken, contents)
	if resp.StatusCode != http.StatusBadRequest || payload["error"] != "invalid_row_3" {
		t.Fatalf("expected whole-file rejection, got %d %v", resp.StatusCode, payload)
	}

	if _, err := store.GetStudentByEmail(context.Background(), email); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("rejected import must not create students, got %v", err)
	}
}

func TestEnrollStoreErrorIsServerError(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}

	cfg := testConfig()
	store := repository.NewStore(pool)
	server := NewServer(cfg, store, newFakeLedger())
	app := httptest.NewServer(server.Router())
	defer app.Close()

	token := mustToken(t, cfg, "admin@example.local", model.RoleAdmin)

	// A student that does not exist is a 404.
	resp, payload := postJSON(t, app.URL+"/enrollment", token, map[string]string{
		"studentId": "missing",
		"courseId":  "missing",
	})
	if resp.StatusCode != http.StatusNotFound || payload["error"] != "student_not_found" {
		t.Fatalf("expected student_not_found, got %d %v", resp.StatusCode, payload)
	}

	// A store failure is not a missing student.
	pool.Close()
	resp, payload = postJSON(t, app.URL+"/enrollment", token, map[string]string{
		"studentId": "missing",
		"courseId":  "missing",
	})
	if resp.StatusCode != http.StatusInternalServerError || payload["error"] != "server_error" {
		t.Fatalf("expected server_error, got %d %v", resp.StatusCode, payload)
	}
}

package controllers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/config"
	"github.com/bjaus/mvc/internal/database"
	"github.com/bjaus/mvc/internal/errorpage"
	"github.com/bjaus/mvc/internal/models"
	"github.com/bjaus/mvc/internal/views"
)

type ControllersSuite struct {
	suite.Suite
	ctx    context.Context
	db     *sql.DB
	router *mvc.Router
}

func TestControllersSuite(t *testing.T) {
	suite.Run(t, new(ControllersSuite))
}

func (s *ControllersSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite3", Path: ":memory:"})
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.Require().NoError(database.EnsureSchema(s.ctx, db, "sqlite3"))
	s.db = db

	v := views.New()
	pages := &errorpage.Handler{
		Renderer: v,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		LogDir:   s.T().TempDir(),
	}
	s.router = mvc.New(mvc.WithRenderer(v), mvc.WithErrorHandler(pages.Handle))
	Register(s.router, Deps{
		Departments: models.NewDepartments(db),
		Roles:       models.NewRoles(db),
		Users:       models.NewUsers(db).WithCost(bcrypt.MinCost),
	})
}

func (s *ControllersSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (s *ControllersSuite) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ControllersSuite) count(table string) int {
	var n int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func (s *ControllersSuite) seed() {
	s.Require().NoError(models.NewDepartments(s.db).Create(s.ctx, "Sales"))
	s.Require().NoError(models.NewRoles(s.db).Create(s.ctx, "Admin"))
}

func (s *ControllersSuite) assertEntryError(rec *httptest.ResponseRecorder, status int, title, message string) {
	s.T().Helper()
	s.Equal(status, rec.Code)
	s.Contains(rec.Body.String(), "<h1>"+title+"</h1>")
	s.Contains(rec.Body.String(), message)
}

func (s *ControllersSuite) TestHome() {
	rec := s.get("/")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<h1>User Manager</h1>")
	s.Equal("text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func (s *ControllersSuite) TestUnknownController() {
	rec := s.get("/widgets/index")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "Page not found")
}

func (s *ControllersSuite) TestReservedActionSuffix() {
	rec := s.get("/departments/index-action")

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ControllersSuite) TestDepartmentLifecycle() {
	rec := s.post("/departments/create-department", url.Values{"department": {"Sales"}})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<td>Sales</td>")

	rec = s.get("/departments/update/1")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `value="Sales"`)

	rec = s.post("/departments/update-department", url.Values{"col_id": {"1"}, "col_name": {"Marketing"}})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<td>Marketing</td>")

	rec = s.get("/departments/delete/1")
	s.Contains(rec.Body.String(), "<strong>Marketing</strong>")

	rec = s.post("/departments/delete-department", url.Values{"col_id": {"1"}})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "No departments found.")
	s.Zero(s.count("tbl_departments"))
}

func (s *ControllersSuite) TestDepartmentValidation() {
	tests := []struct {
		name    string
		path    string
		form    url.Values
		message string
	}{
		{"empty name", "/departments/create-department", url.Values{"department": {""}}, "Department name can not be empty"},
		{"missing name", "/departments/create-department", url.Values{}, "Department name can not be empty"},
		{"empty rename", "/departments/update-department", url.Values{"col_id": {"1"}}, "Department name can not be empty"},
		{"missing id", "/departments/delete-department", url.Values{}, "Department ID can not be empty"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.post(tt.path, tt.form)
			s.assertEntryError(rec, http.StatusNotAcceptable, "Department Entry Error", tt.message)
		})
	}
}

func (s *ControllersSuite) TestDuplicateDepartment() {
	s.seed()

	rec := s.post("/departments/create-department", url.Values{"department": {"Sales"}})

	s.assertEntryError(rec, http.StatusNotAcceptable, "Department Entry Error", "Department exists in database.")
	s.Equal(1, s.count("tbl_departments"))
}

func (s *ControllersSuite) TestMutationsRequirePost() {
	for _, path := range []string{
		"/departments/create-department",
		"/departments/update-department",
		"/departments/delete-department",
		"/roles/create-role",
		"/users/delete-user",
	} {
		s.Run(path, func() {
			rec := s.get(path)
			s.Equal(http.StatusMethodNotAllowed, rec.Code)
			s.Contains(rec.Body.String(), "Method not allowed")
		})
	}
	s.Zero(s.count("tbl_departments"))
}

func (s *ControllersSuite) TestMissingRecord() {
	tests := []struct {
		path    string
		title   string
		message string
	}{
		{"/departments/update/9", "Department Entry Error", "Record not found"},
		{"/departments/delete/9", "Department Entry Error", "Unable to locate record"},
		{"/roles/update/9", "Role Entry Error", "Unable to locate record"},
		{"/users/delete/9", "User Entry Error", "Unable to locate record"},
	}
	for _, tt := range tests {
		s.Run(tt.path, func() {
			s.assertEntryError(s.get(tt.path), http.StatusNotFound, tt.title, tt.message)
		})
	}
}

func (s *ControllersSuite) TestDuplicateRoleIsIgnored() {
	s.seed()

	rec := s.post("/roles/create-role", url.Values{"role": {"Admin"}})

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<td>Admin</td>")
	s.Equal(1, s.count("tbl_roles"))
}

func (s *ControllersSuite) TestRoleValidation() {
	rec := s.post("/roles/create-role", url.Values{"role": {""}})
	s.assertEntryError(rec, http.StatusNotAcceptable, "Role Entry Error", "Role name can not be empty.")

	rec = s.post("/roles/delete-role", url.Values{"col_id": {"abc"}})
	s.assertEntryError(rec, http.StatusNotAcceptable, "Role Entry Error", "Role ID can not be empty.")
}

func (s *ControllersSuite) TestRoleUpdateAndDelete() {
	s.seed()

	rec := s.post("/roles/update-role", url.Values{"col_id": {"1"}, "col_name": {"Owner"}})
	s.Contains(rec.Body.String(), "<td>Owner</td>")

	rec = s.post("/roles/delete-role", url.Values{"col_id": {"1"}})
	s.Contains(rec.Body.String(), "No roles found.")
}

func (s *ControllersSuite) TestCreateUser() {
	s.seed()

	rec := s.get("/users/create")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `<option value="1">Sales</option>`)

	rec = s.post("/users/create-user", url.Values{
		"col_username": {"alice"}, "col_password": {"hunter2"},
		"col_department": {"1"}, "col_role": {"1"},
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<td>alice</td>")
	s.Contains(rec.Body.String(), "<td>Sales</td>")
	s.Contains(rec.Body.String(), "<td>Admin</td>")
}

func (s *ControllersSuite) TestCreateUserValidationOrder() {
	s.seed()
	s.Require().NoError(models.NewUsers(s.db).WithCost(bcrypt.MinCost).Create(s.ctx, models.UserInput{
		Username: "taken", Password: "x", DepartmentID: 1, RoleID: 1,
	}))

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"username first", url.Values{}, "Username must be provided"},
		{"taken before password", url.Values{"col_username": {"taken"}}, "Username exists in database"},
		{"password", url.Values{"col_username": {"bob"}}, "Password must be provided"},
		{"department", url.Values{"col_username": {"bob"}, "col_password": {"x"}}, "Department must be provided"},
		{"department zero", url.Values{"col_username": {"bob"}, "col_password": {"x"}, "col_department": {"0"}}, "Department must be provided"},
		{"role", url.Values{"col_username": {"bob"}, "col_password": {"x"}, "col_department": {"1"}}, "Role must be provided"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.post("/users/create-user", tt.form)
			s.assertEntryError(rec, http.StatusNotAcceptable, "User Entry Error", tt.message)
		})
	}
	s.Equal(1, s.count("tbl_users"))
}

func (s *ControllersSuite) TestUpdateUser() {
	s.seed()
	s.Require().NoError(models.NewRoles(s.db).Create(s.ctx, "Viewer"))
	s.Require().NoError(models.NewUsers(s.db).WithCost(bcrypt.MinCost).Create(s.ctx, models.UserInput{
		Username: "alice", Password: "x", DepartmentID: 1, RoleID: 1,
	}))

	rec := s.get("/users/update/1")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `value="alice"`)

	rec = s.post("/users/update-user", url.Values{"col_id": {"1"}, "col_username": {"alice"}, "col_department": {"1"}})
	s.assertEntryError(rec, http.StatusNotAcceptable, "User Entry Error", "Role must be provided")

	rec = s.post("/users/update-user", url.Values{
		"col_id": {"1"}, "col_username": {"alice"}, "col_department": {"1"}, "col_role": {"2"},
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<td>Viewer</td>")
}

func (s *ControllersSuite) TestLongPassword() {
	s.seed()

	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"72 bytes", strings.Repeat("a", 72), true},
		{"73 bytes", strings.Repeat("a", 73), false},
		{"multibyte under 72 runes", strings.Repeat("é", 40), false},
	}
	for i, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.post("/users/create-user", url.Values{
				"col_username": {"user" + strconv.Itoa(i)}, "col_password": {tt.password},
				"col_department": {"1"}, "col_role": {"1"},
			})
			if tt.ok {
				s.Equal(http.StatusOK, rec.Code)
				return
			}
			s.assertEntryError(rec, http.StatusNotAcceptable, "User Entry Error", "Password can not be longer than 72 bytes")
		})
	}
	s.Equal(1, s.count("tbl_users"))

	rec := s.post("/users/update-user", url.Values{
		"col_id": {"1"}, "col_username": {"renamed"}, "col_password": {strings.Repeat("a", 80)},
		"col_department": {"1"}, "col_role": {"1"},
	})
	s.assertEntryError(rec, http.StatusNotAcceptable, "User Entry Error", "Password can not be longer than 72 bytes")

	var name string
	s.Require().NoError(s.db.QueryRowContext(s.ctx, `SELECT col_username FROM tbl_users WHERE col_id = 1`).Scan(&name))
	s.Equal("user0", name)
}

func (s *ControllersSuite) TestUpdateUserBlankPasswordKeepsHash() {
	s.seed()
	users := models.NewUsers(s.db).WithCost(bcrypt.MinCost)
	s.Require().NoError(users.Create(s.ctx, models.UserInput{
		Username: "alice", Password: "secret", DepartmentID: 1, RoleID: 1,
	}))

	rec := s.post("/users/update-user", url.Values{
		"col_id": {"1"}, "col_username": {"alice"}, "col_password": {""},
		"col_department": {"1"}, "col_role": {"1"},
	})
	s.Equal(http.StatusOK, rec.Code)

	var hash string
	s.Require().NoError(s.db.QueryRowContext(s.ctx, `SELECT col_password FROM tbl_users WHERE col_id = 1`).Scan(&hash))
	s.NoError(bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))
}

func (s *ControllersSuite) TestActionNamesIgnoreCase() {
	s.Equal(http.StatusOK, s.get("/departments/INDEX").Code)
	s.Equal(http.StatusOK, s.get("/Departments/Index").Code)

	rec := s.get("/departments/createdepartment")
	s.Equal(http.StatusMethodNotAllowed, rec.Code)

	rec = s.post("/departments/createdepartment", url.Values{"department": {"Sales"}})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<td>Sales</td>")
	s.Equal(1, s.count("tbl_departments"))
}

func (s *ControllersSuite) TestDeleteUser() {
	s.seed()
	s.Require().NoError(models.NewUsers(s.db).WithCost(bcrypt.MinCost).Create(s.ctx, models.UserInput{
		Username: "alice", Password: "x", DepartmentID: 1, RoleID: 1,
	}))

	rec := s.post("/users/delete-user", url.Values{})
	s.assertEntryError(rec, http.StatusNotAcceptable, "User Entry Error", "User ID can not be empty")

	rec = s.post("/users/delete-user", url.Values{"col_id": {"1"}})
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "No users found.")
}

func (s *ControllersSuite) TestDatabaseFailure() {
	s.Require().NoError(s.db.Close())

	rec := s.get("/departments/index")

	s.assertEntryError(rec, http.StatusInternalServerError, "Department Database Error", "database is closed")
}

func (s *ControllersSuite) TestJSONBody() {
	req := httptest.NewRequest(http.MethodPost, "/departments/create-department", strings.NewReader(`{"department": "Ops"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "<td>Ops</td>")
}

func TestRoutes(t *testing.T) {
	r := mvc.New()
	Routes(r)

	routes := r.Routes()
	if len(routes) != 3 {
		t.Fatalf("len(routes) = %d, want 3", len(routes))
	}
	if routes[0].Defaults.Get("controller") != "Home" {
		t.Errorf("first route controller = %q, want Home", routes[0].Defaults.Get("controller"))
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/api/middleware"
	"github.com/Marga-Ghale/ora-fabtrack/internal/config"
	"github.com/Marga-Ghale/ora-fabtrack/internal/email"
	"github.com/Marga-Ghale/ora-fabtrack/internal/models"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository/inmemory"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secret-pass"

type apiTestEnv struct {
	router *gin.Engine
	repos  *repository.Repositories
	tokens map[string]string
}

func setupAPITest(t *testing.T) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	repos, storage := inmemory.NewRepositories()
	storage.SetClock(func() time.Time { return now })

	cfg := &config.Config{
		JWTSecret:         "handler-test-secret",
		JWTExpiry:         1,
		RefreshExpiry:     1,
		UnknownRolePolicy: "deny",
		SummaryCacheTTL:   time.Minute,
	}
	services := service.NewServices(&service.ServiceDeps{
		Config:   cfg,
		Repos:    repos,
		NotifSvc: notification.NewService(repos.NotificationRepo, repos.UserRepo, repos.ProjectRepo),
		EmailSvc: email.NewService(&email.Config{}),
		Clock:    func() time.Time { return now },
	})

	r := gin.New()
	NewHandlers(services).RegisterRoutes(r, middleware.AuthMiddleware(services.Auth))

	env := &apiTestEnv{router: r, repos: repos, tokens: make(map[string]string)}
	env.createUser(t, "pm@fab.com", "Priya PM", types.RoleProjectManager)
	env.createUser(t, "editor@fab.com", "Eddie Editor", types.RoleViewer)
	env.createUser(t, "outsider@fab.com", "Olly Outsider", types.RoleEditor)
	return env
}

func (env *apiTestEnv) createUser(t *testing.T, emailAddr, name, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, env.repos.UserRepo.Create(context.Background(), &repository.User{
		Email: emailAddr, Name: name, Role: role, Password: string(hash),
	}))

	w := env.do(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: emailAddr, Password: testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	env.tokens[emailAddr] = resp.AccessToken
}

func (env *apiTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *apiTestEnv) as(t *testing.T, user, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return env.do(t, method, path, env.tokens[user], body)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// createProject sets up a project with the editor assigned to TAG-101 only.
func (env *apiTestEnv) createProject(t *testing.T) string {
	t.Helper()
	w := env.as(t, "pm@fab.com", http.MethodPost, "/api/projects", models.CreateProjectRequest{
		Name:       "Refinery Expansion",
		ClientName: "Acme Petro",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[models.ProjectResponse](t, w)

	w = env.as(t, "pm@fab.com", http.MethodPost, "/api/projects/"+project.ID+"/members", models.CreateMemberRequest{
		Email:                "editor@fab.com",
		Role:                 types.RoleEditor,
		EquipmentAssignments: []string{"TAG-101"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, tag := range []string{"TAG-101", "TAG-102"} {
		w = env.as(t, "pm@fab.com", http.MethodPost, "/api/projects/"+project.ID+"/equipment", models.CreateEquipmentRequest{
			Name:      "Unit " + tag,
			Type:      "Static",
			TagNumber: tag,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	return project.ID
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupAPITest(t)

	w := env.do(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/projects", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := setupAPITest(t)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "pm@fab.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterThenFetchProfile(t *testing.T) {
	env := setupAPITest(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: "New Hire", Email: "new@fab.com", Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	auth := decode[models.AuthResponse](t, w)

	w = env.do(t, http.MethodGet, "/api/users/me", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.UserResponse](t, w)
	assert.Equal(t, "New Hire", me.Name)
	assert.Equal(t, types.RoleViewer, me.Role)

	w = env.do(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: "Again", Email: "new@fab.com", Password: testPassword,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEquipmentListIsFilteredByAssignment(t *testing.T) {
	env := setupAPITest(t)
	projectID := env.createProject(t)

	w := env.as(t, "pm@fab.com", http.MethodGet, "/api/projects/"+projectID+"/equipment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.EquipmentResponse](t, w), 2)

	w = env.as(t, "editor@fab.com", http.MethodGet, "/api/projects/"+projectID+"/equipment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	visible := decode[[]models.EquipmentResponse](t, w)
	require.Len(t, visible, 1)
	assert.Equal(t, "TAG-101", visible[0].TagNumber)
}

func TestOutsiderIsForbidden(t *testing.T) {
	env := setupAPITest(t)
	projectID := env.createProject(t)

	w := env.as(t, "outsider@fab.com", http.MethodGet, "/api/projects/"+projectID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.as(t, "outsider@fab.com", http.MethodGet, "/api/projects/"+projectID+"/vdcr/export.csv", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.as(t, "pm@fab.com", http.MethodGet, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVDCRBucketsAndExport(t *testing.T) {
	env := setupAPITest(t)
	projectID := env.createProject(t)

	for _, doc := range []models.CreateVDCRRequest{
		{SrNo: "1", DocumentName: `GA "Drawing"`, Status: "Sent For Approval", EquipmentTagNumbers: []string{"TAG-101"}},
		{SrNo: "2", DocumentName: "Datasheet", Status: types.VDCRApproved},
		{SrNo: "3", DocumentName: "Weld Map"},
	} {
		w := env.as(t, "editor@fab.com", http.MethodPost, "/api/projects/"+projectID+"/vdcr", doc)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.as(t, "pm@fab.com", http.MethodPost, "/api/projects/"+projectID+"/vdcr", models.CreateVDCRRequest{
		DocumentName: "Bad", Status: "lost-in-mail",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.as(t, "pm@fab.com", http.MethodGet, "/api/projects/"+projectID+"/vdcr/buckets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[models.VDCRBoardResponse](t, w)
	assert.Equal(t, 3, board.Total)
	counts := map[string]int{}
	for _, b := range board.Buckets {
		counts[b.Status] = b.Count
	}
	want := map[string]int{
		types.VDCRApproved:           1,
		types.VDCRSentForApproval:    1,
		types.VDCRReceivedForComment: 0,
		types.VDCRPending:            1,
		types.VDCRRejected:           0,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("bucket counts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, types.VDCRApproved, board.Buckets[0].Status)

	w = env.as(t, "pm@fab.com", http.MethodGet, "/api/projects/"+projectID+"/vdcr?status=approved,pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.VDCRResponse](t, w), 2)

	w = env.as(t, "pm@fab.com", http.MethodGet, "/api/projects/"+projectID+"/vdcr/export.csv?status=sent-for-approval", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "vdcr-refinery-expansion-2024-03-15.csv")

	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Sr No,Document Name,Status,Revision,Equipment Tags,Last Update,Updated", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `"1","GA ""Drawing""","sent-for-approval"`), lines[1])
}

func TestEquipmentUpdateShowsInActivity(t *testing.T) {
	env := setupAPITest(t)
	projectID := env.createProject(t)

	w := env.as(t, "pm@fab.com", http.MethodGet, "/api/projects/"+projectID+"/equipment", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pump models.EquipmentResponse
	for _, e := range decode[[]models.EquipmentResponse](t, w) {
		if e.TagNumber == "TAG-101" {
			pump = e
		}
	}
	require.NotEmpty(t, pump.ID)

	progress := 60
	w = env.as(t, "editor@fab.com", http.MethodPut, "/api/equipment/"+pump.ID, models.UpdateEquipmentRequest{Progress: &progress})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 60, decode[models.EquipmentResponse](t, w).Progress)

	w = env.as(t, "editor@fab.com", http.MethodGet, "/api/equipment/"+pump.ID+"/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"Progress"`)
}

func TestAssignments(t *testing.T) {
	env := setupAPITest(t)
	projectID := env.createProject(t)

	w := env.as(t, "editor@fab.com", http.MethodGet, "/api/users/me/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assignments := decode[[]models.AssignmentResponse](t, w)
	require.Len(t, assignments, 1)
	assert.Equal(t, projectID, assignments[0].Project.ID)
	assert.Equal(t, types.RoleEditor, assignments[0].Member.Role)
	assert.Equal(t, []string{"TAG-101"}, assignments[0].Member.EquipmentAssignments)

	w = env.as(t, "outsider@fab.com", http.MethodGet, "/api/users/me/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.AssignmentResponse](t, w))
}

func TestNotificationsFilterByProject(t *testing.T) {
	env := setupAPITest(t)
	ctx := context.Background()
	user, err := env.repos.UserRepo.FindByEmail(ctx, "outsider@fab.com")
	require.NoError(t, err)

	projectA, projectB := "project-a", "project-b"
	for _, n := range []*repository.Notification{
		{UserID: user.ID, ProjectID: &projectA, Type: "vdcr_status", Title: "A1"},
		{UserID: user.ID, ProjectID: &projectB, Type: "vdcr_status", Title: "B1"},
		{UserID: user.ID, ProjectID: &projectA, Type: "vdcr_status", Title: "A2"},
	} {
		require.NoError(t, env.repos.NotificationRepo.Create(ctx, n))
	}

	w := env.as(t, "outsider@fab.com", http.MethodGet, "/api/notifications?projectId=project-a", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	titles := []string{}
	for _, n := range decode[[]models.NotificationResponse](t, w) {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"A1", "A2"}, titles)

	w = env.as(t, "outsider@fab.com", http.MethodGet, "/api/notifications?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.NotificationResponse](t, w), 1)
}

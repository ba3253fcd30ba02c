package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/constants"
	"github.com/highcommand/highcommand/internal/dto"
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
	"github.com/highcommand/highcommand/internal/services"
)

type projectTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// testAuth reads the acting user from a header so a single router can serve
// requests for several identities within one test.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := strconv.ParseUint(c.GetHeader("X-Test-User"), 10, 64); err == nil {
			c.Set(constants.ContextKeyUserID, id)
		}
		c.Next()
	}
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.JoinRequest{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	policy := services.NewPolicyService(membershipRepo)
	projectHandler := NewProjectHandler(services.NewProjectService(projectRepo, policy))
	membershipHandler := NewMembershipHandler(
		services.NewMembershipService(projectRepo, userRepo, membershipRepo, policy))
	dashboardHandler := NewDashboardHandler(
		services.NewDashboardService(projectRepo, taskRepo))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(testAuth())

	r.GET("/api/dashboard", dashboardHandler.GetDashboard)

	projects := r.Group("/api/projects")
	{
		projects.POST("", projectHandler.CreateProject)
		projects.GET("", projectHandler.ListProjects)
		projects.GET("/mine", projectHandler.ListMyProjects)
		projects.GET("/accessible", projectHandler.ListAccessibleProjects)
		projects.GET("/:project_id", projectHandler.GetProject)
		projects.PUT("/:project_id", projectHandler.UpdateProject)
		projects.PATCH("/:project_id/status", projectHandler.UpdateProjectStatus)
		projects.DELETE("/:project_id", projectHandler.DeleteProject)
		projects.POST("/:project_id/join", membershipHandler.RequestToJoin)
		projects.GET("/:project_id/members", membershipHandler.ListMembers)
		projects.POST("/:project_id/members", membershipHandler.AddMember)
		projects.DELETE("/:project_id/members/:user_id", membershipHandler.RemoveMember)
		projects.GET("/:project_id/requests", membershipHandler.ListPendingRequests)
	}

	requests := r.Group("/api/requests")
	{
		requests.POST("/:request_id/approve", membershipHandler.ApproveRequest)
		requests.POST("/:request_id/reject", membershipHandler.RejectRequest)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return projectTestEnv{db: db, router: r}
}

func (env projectTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "placeholder",
		PasswordSalt: "placeholder",
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env projectTestEnv) request(t *testing.T, method, url string, payload any, userID uint64) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(userID, 10))
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestProjectHandler_CreateProject(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{
		"name":        "Launch Plan",
		"description": "Ship it",
	}, owner.ID)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Launch Plan", response.Name)
	require.Equal(t, models.ProjectStatusInProgress, response.Status)
	require.Equal(t, owner.ID, response.OwnerID)
	require.Equal(t, "alice", response.OwnerName)

	// Unauthenticated and invalid requests never reach the service.
	w = env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Nope"}, 0)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/projects", map[string]string{"description": "no name"}, owner.ID)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_ListProjects_Search(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")
	viewer := env.createUser(t, "bob")

	for _, name := range []string{"Launch Plan", "Archive Cleanup"} {
		w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": name}, owner.ID)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// Browsing is open to any signed-in user, member or not.
	w := env.request(t, http.MethodGet, "/api/projects?search=launch", nil, viewer.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Projects []dto.ProjectDTO `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Projects, 1)
	require.Equal(t, "Launch Plan", response.Projects[0].Name)

	w = env.request(t, http.MethodGet, "/api/projects", nil, viewer.ID)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Projects, 2)
}

func TestProjectHandler_GetProject_Statuses(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")
	outsider := env.createUser(t, "bob")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch Plan"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	url := fmt.Sprintf("/api/projects/%d", created.ID)
	require.Equal(t, http.StatusOK, env.request(t, http.MethodGet, url, nil, owner.ID).Code)
	require.Equal(t, http.StatusForbidden, env.request(t, http.MethodGet, url, nil, outsider.ID).Code)
	require.Equal(t, http.StatusNotFound, env.request(t, http.MethodGet, "/api/projects/9999", nil, owner.ID).Code)
	require.Equal(t, http.StatusBadRequest, env.request(t, http.MethodGet, "/api/projects/abc", nil, owner.ID).Code)
}

func TestProjectHandler_UpdateProject(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")
	other := env.createUser(t, "bob")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch Plan"}, owner.ID)
	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	url := fmt.Sprintf("/api/projects/%d", created.ID)

	w = env.request(t, http.MethodPut, url, map[string]string{"name": "Launch Plan v2"}, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var updated dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "Launch Plan v2", updated.Name)

	require.Equal(t, http.StatusForbidden,
		env.request(t, http.MethodPut, url, map[string]string{"name": "Hijack"}, other.ID).Code)

	// No recognized field at all is a validation error.
	require.Equal(t, http.StatusBadRequest,
		env.request(t, http.MethodPut, url, map[string]string{}, owner.ID).Code)
}

func TestProjectHandler_UpdateProjectStatus(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch Plan"}, owner.ID)
	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	url := fmt.Sprintf("/api/projects/%d/status", created.ID)

	w = env.request(t, http.MethodPatch, url, map[string]string{"status": "completed"}, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var updated dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, models.ProjectStatusCompleted, updated.Status)

	w = env.request(t, http.MethodPatch, url, map[string]string{"status": "archived"}, owner.ID)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var response apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, string(apperrors.KindValidation), response.Error.Code)
}

func TestProjectHandler_DeleteProject(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")
	other := env.createUser(t, "bob")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch Plan"}, owner.ID)
	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	url := fmt.Sprintf("/api/projects/%d", created.ID)

	require.Equal(t, http.StatusForbidden, env.request(t, http.MethodDelete, url, nil, other.ID).Code)
	require.Equal(t, http.StatusOK, env.request(t, http.MethodDelete, url, nil, owner.ID).Code)
	require.Equal(t, http.StatusNotFound, env.request(t, http.MethodGet, url, nil, owner.ID).Code)
}

// TestMembershipFlow drives the join request lifecycle over HTTP: request,
// list pending, approve, and the resulting member list with the owner first.
func TestMembershipFlow(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")
	joiner := env.createUser(t, "bob")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch Plan"}, owner.ID)
	var project dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/projects/%d/join", project.ID), nil, joiner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var request dto.JoinRequestDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))
	require.Equal(t, models.RequestStatusPending, request.Status)
	require.Equal(t, "bob", request.User.Username)

	// Second request while pending conflicts.
	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/projects/%d/join", project.ID), nil, joiner.ID)
	require.Equal(t, http.StatusConflict, w.Code)

	// Only the owner sees the queue.
	requestsURL := fmt.Sprintf("/api/projects/%d/requests", project.ID)
	require.Equal(t, http.StatusForbidden, env.request(t, http.MethodGet, requestsURL, nil, joiner.ID).Code)

	w = env.request(t, http.MethodGet, requestsURL, nil, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Requests []dto.JoinRequestDTO `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending.Requests, 1)

	approveURL := fmt.Sprintf("/api/requests/%d/approve", request.ID)
	require.Equal(t, http.StatusForbidden, env.request(t, http.MethodPost, approveURL, nil, joiner.ID).Code)

	w = env.request(t, http.MethodPost, approveURL, nil, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var approved dto.JoinRequestDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	require.Equal(t, models.RequestStatusApproved, approved.Status)

	// Approving an already resolved request conflicts.
	require.Equal(t, http.StatusConflict, env.request(t, http.MethodPost, approveURL, nil, owner.ID).Code)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/projects/%d/members", project.ID), nil, joiner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var members struct {
		Members []dto.MemberDTO `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members.Members, 2)
	require.Equal(t, "alice", members.Members[0].User.Username)
	require.Equal(t, dto.RoleOwner, members.Members[0].Role)
	require.Equal(t, "bob", members.Members[1].User.Username)
	require.Equal(t, dto.RoleMember, members.Members[1].Role)
}

func TestMembershipHandler_AddAndRemoveMember(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")
	member := env.createUser(t, "bob")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch Plan"}, owner.ID)
	var project dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	membersURL := fmt.Sprintf("/api/projects/%d/members", project.ID)
	w = env.request(t, http.MethodPost, membersURL, map[string]uint64{"user_id": member.ID}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, membersURL, map[string]uint64{"user_id": member.ID}, owner.ID)
	require.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodPost, membersURL, map[string]uint64{"user_id": 9999}, owner.ID)
	require.Equal(t, http.StatusNotFound, w.Code)

	removeURL := fmt.Sprintf("/api/projects/%d/members/%d", project.ID, member.ID)
	require.Equal(t, http.StatusOK, env.request(t, http.MethodDelete, removeURL, nil, member.ID).Code)
	require.Equal(t, http.StatusNotFound, env.request(t, http.MethodDelete, removeURL, nil, owner.ID).Code)
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	env := setupProjectTestEnv(t)
	owner := env.createUser(t, "alice")

	w := env.request(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch Plan"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/dashboard", nil, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var summary services.DashboardSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.EqualValues(t, 1, summary.ActiveProjects)
	require.Zero(t, summary.TodoTasks)
	require.Zero(t, summary.InProgressTasks)

	require.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodGet, "/api/dashboard", nil, 0).Code)
}

package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/repository"
)

// testEnv wires every service against a fresh in-memory database so tests
// exercise the real repositories and the real schema.
type testEnv struct {
	db          *gorm.DB
	auth        *AuthService
	projects    *ProjectService
	memberships *MembershipService
	tasks       *TaskService
	dashboard   *DashboardService
}

func newTestEnv(t *testing.T) testEnv {
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

	policy := NewPolicyService(membershipRepo)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return testEnv{
		db:          db,
		auth:        NewAuthService(userRepo),
		projects:    NewProjectService(projectRepo, policy),
		memberships: NewMembershipService(projectRepo, userRepo, membershipRepo, policy),
		tasks:       NewTaskService(taskRepo, projectRepo, policy),
		dashboard:   NewDashboardService(projectRepo, taskRepo),
	}
}

// Fixture helpers insert rows directly; password hashing is exercised by the
// auth tests only, so fixture users carry placeholder credentials.

func (env testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "placeholder",
		PasswordSalt: "placeholder",
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env testEnv) createProject(t *testing.T, name string, ownerID uint64) *models.Project {
	t.Helper()
	project := &models.Project{
		Name:    name,
		Status:  models.ProjectStatusInProgress,
		OwnerID: ownerID,
	}
	require.NoError(t, env.db.Create(project).Error)
	return project
}

func (env testEnv) addMember(t *testing.T, projectID, userID uint64) {
	t.Helper()
	membership := &models.Membership{
		ProjectID: projectID,
		UserID:    userID,
	}
	require.NoError(t, env.db.Create(membership).Error)
}

func (env testEnv) createTask(t *testing.T, projectID, creatorID uint64, title string) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:     title,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		ProjectID: projectID,
		CreatorID: creatorID,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func (env testEnv) assign(t *testing.T, taskID, userID uint64) {
	t.Helper()
	assignment := &models.TaskAssignment{
		TaskID: taskID,
		UserID: userID,
	}
	require.NoError(t, env.db.Create(assignment).Error)
}

package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/repository"
)

var errDatabaseDown = errors.New("connection refused")

// A mocked connection is the only way to make the driver fail on demand;
// whatever query breaks, callers must see a storage kind, not a raw error.
func TestStorageFailuresMapToStorageKind(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	policy := NewPolicyService(repository.NewMembershipRepository(db))
	auth := NewAuthService(userRepo)
	projects := NewProjectService(projectRepo, policy)

	mock.ExpectQuery("SELECT \\* FROM `users`").WillReturnError(errDatabaseDown)
	_, err = auth.GetUser(1)
	require.True(t, apperrors.IsKind(err, apperrors.KindStorage))
	require.ErrorIs(t, err, errDatabaseDown)

	mock.ExpectQuery("SELECT \\* FROM `projects`").WillReturnError(errDatabaseDown)
	_, err = projects.ListProjects("")
	require.True(t, apperrors.IsKind(err, apperrors.KindStorage))

	require.NoError(t, mock.ExpectationsWereMet())
}

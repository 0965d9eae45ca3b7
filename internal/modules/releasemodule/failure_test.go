package releasemodule

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/soundfoundry/releasedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// A failed backend write must surface as a single error with no optimistic
// state anywhere; the caller re-reads to learn the truth.
func TestApplyFieldsReportsFailedUpdate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	svc := NewService(db, nil)

	releaseRows := sqlmock.NewRows([]string{"id", "name", "catalog_number", "type", "format", "status", "created_by"}).
		AddRow("rel-1", "Night Drive", "RD-0001", "digital", "single", "in_progress", "user-1")
	mock.ExpectQuery(`SELECT \* FROM "releases"`).WillReturnRows(releaseRows)
	mock.ExpectQuery(`SELECT \* FROM "tracks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "release_id", "position", "title", "phonogram_line"}))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "releases"`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	updated, err := svc.ApplyFields(context.Background(), "rel-1", map[string]interface{}{
		"genre": "electronic",
	})
	require.Error(t, err)
	assert.Nil(t, updated)

	assert.Contains(t, err.Error(), "failed to update release")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReleaseNotFoundIsDistinct(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	svc := NewService(db, nil)

	mock.ExpectQuery(`SELECT \* FROM "releases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = svc.GetRelease(context.Background(), "missing")
	require.Error(t, err)

	appErr, ok := err.(*types.AppError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorCodeNotFound, appErr.Code)
}

package repository

import (
	"context"
	"regexp"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_CreateIsIdempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	reader := testutil.CreateUser(t, db, "reader")
	author := testutil.CreateUser(t, db, "author")

	created, err := repo.Create(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	exists, err := repo.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFollowRepository_SelfEdgeRejectedByStore(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	u := testutil.CreateUser(t, db, "narcissus")

	err := db.Create(&models.Follow{UserID: u.ID, AuthorID: u.ID}).Error
	assert.Error(t, err)
}

func TestFollowRepository_Delete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	reader := testutil.CreateUser(t, db, "reader")
	author := testutil.CreateUser(t, db, "author")
	testutil.CreateFollow(t, db, reader, author)

	require.NoError(t, repo.Delete(ctx, reader.ID, author.ID))

	err := repo.Delete(ctx, reader.ID, author.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowRepository_DeleteSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows" WHERE user_id = $1 AND author_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows" WHERE user_id = $1 AND author_id = $2`)).
		WithArgs(1, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(ctx, 1, 2))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, 1, 3)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_CreateSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "follows" .* ON CONFLICT \("user_id","author_id"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	created, err := repo.Create(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

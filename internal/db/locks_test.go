package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAcquireUserSyncLock(t *testing.T) {
	mock := newMockDB(t)

	userID := uuid.New()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtextextended\(\$1::text, 0\)\)`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, AcquireUserSyncLock(DB, userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package db

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AcquireUserSyncLock takes a transaction-scoped advisory lock keyed by the
// user id. The server and worker processes each run their own engine, so an
// in-process mutex alone cannot serialize an HTTP-triggered sync against a
// scheduled one; this lock serializes them at the database. It is released
// automatically when the transaction commits or rolls back.
func AcquireUserSyncLock(q sqlx.Ext, userID uuid.UUID) error {
	_, err := q.Exec(`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, userID)
	return err
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandevgo/syllabot/internal/auth"
	"github.com/sandevgo/syllabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db       *sql.DB
	store    *Store
	verifier *auth.Verifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "nested", "syllabot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	v, err := auth.NewVerifier("test-secret", "authenticated")
	require.NoError(t, err)
	return fixture{db: db, store: NewStore(db, v), verifier: v}
}

func (f fixture) bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := f.verifier.Sign(subject, subject+"@example.com", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestStore_SessionRequiresCredential(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Session(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestStore_Identity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Session(ctx, f.bearer(t, "user-1"))
	require.NoError(t, err)
	id, err := sess.Identity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.ID)
	assert.Equal(t, "user-1@example.com", id.Email)

	bad, err := f.store.Session(ctx, "Bearer not-a-token")
	require.NoError(t, err)
	_, err = bad.Identity(ctx)
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestStore_WithinTxPersistsSyllabusAndTopics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Session(ctx, f.bearer(t, "user-1"))
	require.NoError(t, err)
	tx, ok := sess.(core.Transactor)
	require.True(t, ok)

	var saved core.Syllabus
	err = tx.WithinTx(ctx, func(w core.SyllabusWriter) error {
		var err error
		saved, err = w.InsertSyllabus(ctx, core.Syllabus{UserID: "user-1", Title: "CS101", Content: "Week 1: Variables"})
		if err != nil {
			return err
		}
		_, err = w.InsertTopics(ctx, []core.Topic{
			{SyllabusID: saved.ID, Title: "Variables", Importance: core.ImportanceHigh, Description: "Storing values"},
			{SyllabusID: saved.ID, Title: "Loops", Importance: core.ImportanceMedium, Description: ""},
		})
		return err
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := sess.GetSyllabus(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS101", got.Title)
	assert.Equal(t, "Week 1: Variables", got.Content)

	topics, err := storedTopics(ctx, f.db, saved.ID)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "Variables", topics[0].Title)
	assert.Equal(t, core.ImportanceHigh, topics[0].Importance)
	assert.Equal(t, "Loops", topics[1].Title)
	assert.Equal(t, "", topics[1].Description)
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Session(ctx, f.bearer(t, "user-1"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = sess.(core.Transactor).WithinTx(ctx, func(w core.SyllabusWriter) error {
		if _, err := w.InsertSyllabus(ctx, core.Syllabus{UserID: "user-1", Title: "CS101", Content: "x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := countSyllabi(ctx, f.db, "user-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_InvalidImportanceRejectedByDatabase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Session(ctx, f.bearer(t, "user-1"))
	require.NoError(t, err)

	syl, err := sess.InsertSyllabus(ctx, core.Syllabus{UserID: "user-1", Title: "CS101", Content: "x"})
	require.NoError(t, err)

	_, err = sess.InsertTopics(ctx, []core.Topic{{SyllabusID: syl.ID, Title: "A", Importance: "critical"}})
	assert.ErrorIs(t, err, core.ErrPersistenceFailure)
}

func TestStore_DeleteSyllabusCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.store.Session(ctx, f.bearer(t, "user-1"))
	require.NoError(t, err)

	syl, err := sess.InsertSyllabus(ctx, core.Syllabus{UserID: "user-1", Title: "CS101", Content: "x"})
	require.NoError(t, err)
	_, err = sess.InsertTopics(ctx, []core.Topic{{SyllabusID: syl.ID, Title: "A", Importance: core.ImportanceLow}})
	require.NoError(t, err)

	require.NoError(t, sess.DeleteSyllabus(ctx, syl.ID))

	_, err = sess.GetSyllabus(ctx, syl.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	topics, err := storedTopics(ctx, f.db, syl.ID)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestStore_GetSyllabusScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner, err := f.store.Session(ctx, f.bearer(t, "owner"))
	require.NoError(t, err)
	syl, err := owner.InsertSyllabus(ctx, core.Syllabus{UserID: "owner", Title: "CS101", Content: "x"})
	require.NoError(t, err)

	stranger, err := f.store.Session(ctx, f.bearer(t, "stranger"))
	require.NoError(t, err)
	_, err = stranger.GetSyllabus(ctx, syl.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = owner.GetSyllabus(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_Ping(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.store.Ping(context.Background()))
}

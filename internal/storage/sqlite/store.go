package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/pkg/log"
)

// IdentityVerifier maps a caller credential to an identity.
type IdentityVerifier interface {
	Verify(credential string) (core.Identity, error)
}

// Store is a single-node persistence gateway. Syllabus and topic writes run
// in one transaction.
type Store struct {
	db       *sql.DB
	verifier IdentityVerifier
}

func NewStore(db *sql.DB, verifier IdentityVerifier) *Store {
	return &Store{db: db, verifier: verifier}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Session(_ context.Context, credential string) (core.StoreSession, error) {
	if credential == "" {
		return nil, core.Unauthenticated("No authorization header")
	}
	return &session{
		writer:     writer{q: s.db},
		db:         s.db,
		verifier:   s.verifier,
		credential: credential,
	}, nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type session struct {
	writer
	db         *sql.DB
	verifier   IdentityVerifier
	credential string
	identity   *core.Identity
}

func (s *session) Identity(_ context.Context) (core.Identity, error) {
	if s.identity != nil {
		return *s.identity, nil
	}
	id, err := s.verifier.Verify(s.credential)
	if err != nil {
		return core.Identity{}, err
	}
	s.identity = &id
	return id, nil
}

func (s *session) GetSyllabus(ctx context.Context, id string) (core.Syllabus, error) {
	caller, err := s.Identity(ctx)
	if err != nil {
		return core.Syllabus{}, err
	}

	var syl core.Syllabus
	err = s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, content, created_at FROM syllabi WHERE id = ?`, id,
	).Scan(&syl.ID, &syl.UserID, &syl.Title, &syl.Content, &syl.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Syllabus{}, core.NotFound("Failed to fetch syllabus")
	}
	if err != nil {
		return core.Syllabus{}, core.Persistence("Failed to fetch syllabus", err)
	}
	if syl.UserID != caller.ID {
		return core.Syllabus{}, core.Wrap(core.ErrForbidden, "Failed to fetch syllabus", nil)
	}
	return syl, nil
}

func (s *session) WithinTx(ctx context.Context, fn func(w core.SyllabusWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Persistence("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&writer{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return core.Persistence("commit transaction", err)
	}
	log.FromCtx(ctx).Debug().Msg("syllabus transaction committed")
	return nil
}

type writer struct {
	q querier
}

func (w *writer) InsertSyllabus(ctx context.Context, syl core.Syllabus) (core.Syllabus, error) {
	syl.ID = uuid.NewString()
	syl.CreatedAt = time.Now().UTC()

	_, err := w.q.ExecContext(ctx,
		`INSERT INTO syllabi (id, user_id, title, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		syl.ID, syl.UserID, syl.Title, syl.Content, syl.CreatedAt,
	)
	if err != nil {
		return core.Syllabus{}, core.Persistence("failed to save syllabus", err)
	}
	return syl, nil
}

func (w *writer) InsertTopics(ctx context.Context, topics []core.Topic) ([]core.Topic, error) {
	now := time.Now().UTC()
	out := make([]core.Topic, 0, len(topics))
	for i, t := range topics {
		t.ID = uuid.NewString()
		t.CreatedAt = now
		_, err := w.q.ExecContext(ctx,
			`INSERT INTO topics (id, syllabus_id, position, title, importance, description, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.SyllabusID, i, t.Title, string(t.Importance), t.Description, t.CreatedAt,
		)
		if err != nil {
			return nil, core.Persistence("failed to save topics", fmt.Errorf("topic %d: %w", i, err))
		}
		out = append(out, t)
	}
	return out, nil
}

func (w *writer) DeleteSyllabus(ctx context.Context, id string) error {
	if _, err := w.q.ExecContext(ctx, `DELETE FROM syllabi WHERE id = ?`, id); err != nil {
		return core.Persistence("failed to delete syllabus", err)
	}
	return nil
}

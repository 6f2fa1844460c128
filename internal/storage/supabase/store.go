package supabase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/syllabot/internal/auth"
	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/pkg/log"
	supa "github.com/supabase-community/supabase-go"
)

const (
	syllabiTable = "syllabi"
	topicsTable  = "topics"

	// PostgREST code for a single-object request that matched no rows.
	codeNoRows = "PGRST116"
)

// Store talks to a hosted Supabase project. Every session forwards the
// caller's authorization header so row level security applies to each query.
type Store struct {
	url string
	key string
}

func NewStore(url, key string) (*Store, error) {
	if url == "" || key == "" {
		return nil, core.Wrap(core.ErrConfigurationMissing, "STORE_URL and STORE_KEY are required", nil)
	}
	return &Store{url: strings.TrimRight(url, "/"), key: key}, nil
}

func (s *Store) Session(_ context.Context, credential string) (core.StoreSession, error) {
	if credential == "" {
		return nil, core.Unauthenticated("No authorization header")
	}
	client, err := supa.NewClient(s.url, s.key, &supa.ClientOptions{
		Headers: map[string]string{"Authorization": credential},
	})
	if err != nil {
		return nil, core.Wrap(core.ErrConfigurationMissing, "failed to create store client", err)
	}
	return &session{client: client, credential: credential}, nil
}

// Ping checks the auth service health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	client, err := supa.NewClient(s.url, s.key, nil)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := client.Auth.HealthCheck(); err != nil {
		return fmt.Errorf("store health check: %w", err)
	}
	return nil
}

type session struct {
	client     *supa.Client
	credential string

	once     sync.Once
	identity core.Identity
	idErr    error
}

func (s *session) Identity(ctx context.Context) (core.Identity, error) {
	s.once.Do(func() {
		token, ok := auth.BearerToken(s.credential)
		if !ok {
			s.idErr = core.Unauthenticated("Authentication failed")
			return
		}
		resp, err := s.client.Auth.WithToken(token).GetUser()
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("auth lookup failed")
			s.idErr = core.Wrap(core.ErrUnauthenticated, "Authentication failed", err)
			return
		}
		s.identity = core.Identity{ID: resp.ID.String(), Email: resp.Email}
	})
	return s.identity, s.idErr
}

type syllabusRow struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type topicRow struct {
	SyllabusID  string `json:"syllabus_id"`
	Title       string `json:"title"`
	Importance  string `json:"importance"`
	Description string `json:"description"`
}

func (s *session) InsertSyllabus(ctx context.Context, syl core.Syllabus) (core.Syllabus, error) {
	if err := ctx.Err(); err != nil {
		return core.Syllabus{}, err
	}
	var saved core.Syllabus
	_, err := s.client.From(syllabiTable).
		Insert(syllabusRow{UserID: syl.UserID, Title: syl.Title, Content: syl.Content}, false, "", "representation", "").
		Single().
		ExecuteTo(&saved)
	if err != nil {
		return core.Syllabus{}, core.Persistence("failed to save syllabus", err)
	}
	return saved, nil
}

func (s *session) InsertTopics(ctx context.Context, topics []core.Topic) ([]core.Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return []core.Topic{}, nil
	}

	rows := make([]topicRow, 0, len(topics))
	for i, t := range topics {
		if !t.Importance.Valid() {
			return nil, core.Persistence("failed to save topics", fmt.Errorf("topic %d: invalid importance %q", i, t.Importance))
		}
		rows = append(rows, topicRow{
			SyllabusID:  t.SyllabusID,
			Title:       t.Title,
			Importance:  string(t.Importance),
			Description: t.Description,
		})
	}

	var saved []core.Topic
	_, err := s.client.From(topicsTable).
		Insert(rows, false, "", "representation", "").
		ExecuteTo(&saved)
	if err != nil {
		return nil, core.Persistence("failed to save topics", err)
	}
	return saved, nil
}

func (s *session) DeleteSyllabus(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.client.From(syllabiTable).Delete("minimal", "").Eq("id", id).Execute()
	if err != nil {
		return core.Persistence("failed to delete syllabus", err)
	}
	return nil
}

func (s *session) GetSyllabus(ctx context.Context, id string) (core.Syllabus, error) {
	if _, err := s.Identity(ctx); err != nil {
		return core.Syllabus{}, err
	}

	var syl core.Syllabus
	_, err := s.client.From(syllabiTable).
		Select("*", "", false).
		Eq("id", id).
		Single().
		ExecuteTo(&syl)
	if err != nil {
		if strings.Contains(err.Error(), codeNoRows) {
			return core.Syllabus{}, core.NotFound("Failed to fetch syllabus")
		}
		return core.Syllabus{}, core.Persistence("Failed to fetch syllabus", err)
	}
	return syl, nil
}

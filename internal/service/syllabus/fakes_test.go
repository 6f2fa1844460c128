package syllabus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/syllabot/internal/core"
)

type fakeClient struct {
	mu       sync.Mutex
	reply    string
	chunks   []string
	err      error
	calls    int
	messages [][]core.Message
	deadline bool
	confErr  error
}

func (f *fakeClient) Configured() error { return f.confErr }

func (f *fakeClient) Complete(ctx context.Context, messages []core.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, messages)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) Stream(_ context.Context, messages []core.Message) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, messages)
	if f.err != nil {
		return nil, f.err
	}
	return &chunkReader{chunks: append([]string(nil), f.chunks...)}, nil
}

// chunkReader hands out one chunk per Read, like a network body would.
type chunkReader struct {
	chunks []string
	closed bool
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if c.chunks[0] == "" {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *chunkReader) Close() error {
	c.closed = true
	return nil
}

type fakeStore struct {
	mu            sync.Mutex
	transactional bool
	identity      core.Identity
	identityErr   error
	syllabi       map[string]core.Syllabus
	topics        map[string][]core.Topic
	writes        int
	deletes       int
	sessions      int
	topicErr      error
	deleteErr     error
	nextID        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		identity: core.Identity{ID: "user-1", Email: "student@example.com"},
		syllabi:  map[string]core.Syllabus{},
		topics:   map[string][]core.Topic{},
	}
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) Session(_ context.Context, credential string) (core.StoreSession, error) {
	if credential == "" {
		return nil, core.Unauthenticated("No authorization header")
	}
	s.mu.Lock()
	s.sessions++
	s.mu.Unlock()

	base := &fakeSession{store: s}
	if s.transactional {
		return &fakeTxSession{fakeSession: base}, nil
	}
	return base, nil
}

func (s *fakeStore) syllabusCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.syllabi)
}

type fakeSession struct {
	store *fakeStore
}

func (f *fakeSession) Identity(context.Context) (core.Identity, error) {
	return f.store.identity, f.store.identityErr
}

func (f *fakeSession) GetSyllabus(_ context.Context, id string) (core.Syllabus, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	syl, ok := f.store.syllabi[id]
	if !ok {
		return core.Syllabus{}, core.NotFound("Failed to fetch syllabus")
	}
	if syl.UserID != f.store.identity.ID {
		return core.Syllabus{}, core.Wrap(core.ErrForbidden, "Failed to fetch syllabus", nil)
	}
	return syl, nil
}

func (f *fakeSession) InsertSyllabus(_ context.Context, syl core.Syllabus) (core.Syllabus, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.writes++
	f.store.nextID++
	syl.ID = fmt.Sprintf("syl-%d", f.store.nextID)
	syl.CreatedAt = time.Now().UTC()
	f.store.syllabi[syl.ID] = syl
	return syl, nil
}

func (f *fakeSession) InsertTopics(_ context.Context, topics []core.Topic) ([]core.Topic, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.writes++
	if f.store.topicErr != nil {
		return nil, f.store.topicErr
	}
	out := make([]core.Topic, 0, len(topics))
	for i, t := range topics {
		t.ID = fmt.Sprintf("%s-topic-%d", t.SyllabusID, i)
		out = append(out, t)
		f.store.topics[t.SyllabusID] = append(f.store.topics[t.SyllabusID], t)
	}
	return out, nil
}

func (f *fakeSession) DeleteSyllabus(_ context.Context, id string) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.deletes++
	if f.store.deleteErr != nil {
		return f.store.deleteErr
	}
	delete(f.store.syllabi, id)
	delete(f.store.topics, id)
	return nil
}

type fakeTxSession struct {
	*fakeSession
}

// WithinTx snapshots the maps and restores them when fn fails.
func (f *fakeTxSession) WithinTx(ctx context.Context, fn func(w core.SyllabusWriter) error) error {
	f.store.mu.Lock()
	syllabi := make(map[string]core.Syllabus, len(f.store.syllabi))
	for k, v := range f.store.syllabi {
		syllabi[k] = v
	}
	topics := make(map[string][]core.Topic, len(f.store.topics))
	for k, v := range f.store.topics {
		topics[k] = v
	}
	f.store.mu.Unlock()

	if err := fn(f.fakeSession); err != nil {
		f.store.mu.Lock()
		f.store.syllabi, f.store.topics = syllabi, topics
		f.store.mu.Unlock()
		return err
	}
	return nil
}

type fixedConfig struct {
	timeout   time.Duration
	maxTokens int
}

func (c fixedConfig) GetExtractTimeout() time.Duration { return c.timeout }
func (c fixedConfig) GetMaxContentTokens() int        { return c.maxTokens }

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

var errBoom = errors.New("boom")

package syllabus

import (
	"context"
	"io"

	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/pkg/log"
)

type ChatRequest struct {
	Message    string `json:"message" validate:"notblank"`
	SyllabusID string `json:"syllabusId" validate:"notblank"`
}

// Relay answers questions about a stored syllabus by streaming the gateway
// reply back without touching it.
type Relay struct {
	client core.CompletionClient
	store  core.Store
}

func NewRelay(client core.CompletionClient, store core.Store) *Relay {
	return &Relay{client: client, store: store}
}

// Chat returns the raw event stream of the gateway. Errors are returned
// before any byte is produced.
func (r *Relay) Chat(ctx context.Context, req ChatRequest, credential string) (io.ReadCloser, error) {
	logger := log.FromCtx(ctx)

	if err := validateStruct(req); err != nil {
		return nil, core.BadRequest(err.Error())
	}
	logger.Info().Str("syllabus_id", req.SyllabusID).Msg("chat request")

	if err := r.client.Configured(); err != nil {
		return nil, err
	}
	sess, err := r.store.Session(ctx, credential)
	if err != nil {
		return nil, err
	}
	syl, err := sess.GetSyllabus(ctx, req.SyllabusID)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("title", syl.Title).Msg("fetched syllabus")

	return r.client.Stream(ctx, buildChatMessages(syl, req.Message))
}

package syllabus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/pkg/log"
)

const compensationTimeout = 10 * time.Second

type ExtractRequest struct {
	Content string `json:"content" validate:"notblank"`
	Title   string `json:"title" validate:"notblank"`
}

type ExtractResult struct {
	SyllabusID string       `json:"syllabusId"`
	Topics     []core.Topic `json:"topics"`
}

type Extractor struct {
	client  core.CompletionClient
	store   core.Store
	cfg     core.ExtractorConfig
	counter core.TokenCounter
}

// NewExtractor builds an extractor. counter may be nil when no content limit
// is configured.
func NewExtractor(client core.CompletionClient, store core.Store, cfg core.ExtractorConfig, counter core.TokenCounter) *Extractor {
	return &Extractor{
		client:  client,
		store:   store,
		cfg:     cfg,
		counter: counter,
	}
}

func (e *Extractor) Extract(ctx context.Context, req ExtractRequest, credential string) (ExtractResult, error) {
	logger := log.FromCtx(ctx)

	if err := validateStruct(req); err != nil {
		return ExtractResult{}, core.BadRequest(err.Error())
	}
	if err := e.checkContentSize(req.Content); err != nil {
		return ExtractResult{}, err
	}

	logger.Info().Str("title", req.Title).Msg("analyzing syllabus")

	reply, err := e.complete(ctx, req.Content)
	if err != nil {
		return ExtractResult{}, err
	}
	logger.Debug().Str("reply", reply).Msg("model reply received")

	drafts, err := parseTopics(reply)
	if err != nil {
		logger.Error().Err(err).Str("reply", reply).Msg("failed to parse model reply")
		return ExtractResult{}, err
	}

	sess, err := e.store.Session(ctx, credential)
	if err != nil {
		return ExtractResult{}, err
	}
	caller, err := sess.Identity(ctx)
	if err != nil {
		return ExtractResult{}, err
	}

	syl := core.Syllabus{UserID: caller.ID, Title: req.Title, Content: req.Content}

	var saved core.Syllabus
	var topics []core.Topic
	if tx, ok := sess.(core.Transactor); ok {
		err = tx.WithinTx(ctx, func(w core.SyllabusWriter) error {
			var err error
			saved, topics, err = writeSyllabus(ctx, w, syl, drafts)
			return err
		})
	} else {
		saved, topics, err = e.writeWithCompensation(ctx, sess, syl, drafts)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to persist syllabus")
		return ExtractResult{}, err
	}

	logger.Info().Int("count", len(topics)).Str("syllabus_id", saved.ID).Msg("topics saved")
	if topics == nil {
		topics = []core.Topic{}
	}
	return ExtractResult{SyllabusID: saved.ID, Topics: topics}, nil
}

func (e *Extractor) checkContentSize(content string) error {
	limit := e.cfg.GetMaxContentTokens()
	if limit <= 0 || e.counter == nil {
		return nil
	}
	if n := e.counter.Count(content); n > limit {
		return core.BadRequest(fmt.Sprintf("syllabus content is too long: %d tokens, limit is %d", n, limit))
	}
	return nil
}

func (e *Extractor) complete(ctx context.Context, content string) (string, error) {
	if timeout := e.cfg.GetExtractTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.client.Complete(ctx, buildExtractionMessages(content))
}

// writeWithCompensation is used for stores without transactions. A failed
// topic insert removes the syllabus again; if that fails too the orphan id is
// reported through core.PartialWriteError.
func (e *Extractor) writeWithCompensation(ctx context.Context, w core.SyllabusWriter, syl core.Syllabus, drafts []core.TopicDraft) (core.Syllabus, []core.Topic, error) {
	saved, err := w.InsertSyllabus(ctx, syl)
	if err != nil {
		return core.Syllabus{}, nil, err
	}
	log.FromCtx(ctx).Info().Str("syllabus_id", saved.ID).Msg("syllabus saved")

	topics, err := w.InsertTopics(ctx, toTopics(saved.ID, drafts))
	if err == nil {
		return saved, topics, nil
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	if derr := w.DeleteSyllabus(cctx, saved.ID); derr != nil {
		log.FromCtx(ctx).Error().Err(derr).Str("syllabus_id", saved.ID).Msg("failed to remove syllabus after topic failure")
		return core.Syllabus{}, nil, &core.PartialWriteError{SyllabusID: saved.ID, Err: errors.Join(err, derr)}
	}
	return core.Syllabus{}, nil, err
}

func writeSyllabus(ctx context.Context, w core.SyllabusWriter, syl core.Syllabus, drafts []core.TopicDraft) (core.Syllabus, []core.Topic, error) {
	saved, err := w.InsertSyllabus(ctx, syl)
	if err != nil {
		return core.Syllabus{}, nil, err
	}
	log.FromCtx(ctx).Info().Str("syllabus_id", saved.ID).Msg("syllabus saved")

	topics, err := w.InsertTopics(ctx, toTopics(saved.ID, drafts))
	if err != nil {
		return core.Syllabus{}, nil, err
	}
	return saved, topics, nil
}

func toTopics(syllabusID string, drafts []core.TopicDraft) []core.Topic {
	topics := make([]core.Topic, 0, len(drafts))
	for _, d := range drafts {
		topics = append(topics, core.Topic{
			SyllabusID:  syllabusID,
			Title:       d.Title,
			Importance:  d.Importance,
			Description: d.Description,
		})
	}
	return topics
}

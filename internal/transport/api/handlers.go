package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/syllabot/internal/service/syllabus"
	"github.com/sandevgo/syllabot/pkg/log"
)

const relayBufferSize = 4 << 10

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		log.FromCtx(r.Context()).Warn().Err(err).Msg("store not ready")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const endpoint = "analyze-syllabus"
	ctx := r.Context()

	var req syllabus.ExtractRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, endpoint, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.extractor.Extract(ctx, req, r.Header.Get("Authorization"))
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("error in analyze-syllabus")
		status, resp := responseFor(err, "AI analysis failed")
		s.reply(w, endpoint, status, resp)
		return
	}

	s.metrics.observeTopics(len(res.Topics))
	s.metrics.observeRequest(endpoint, http.StatusOK)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	const endpoint = "syllabus-chat"
	ctx := r.Context()

	var req syllabus.ChatRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, endpoint, http.StatusBadRequest, err.Error())
		return
	}

	body, err := s.relay.Chat(ctx, req, r.Header.Get("Authorization"))
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("error in syllabus-chat")
		status, resp := responseFor(err, "AI chat failed")
		s.reply(w, endpoint, status, resp)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	s.metrics.observeRequest(endpoint, http.StatusOK)

	n, err := relay(w, body)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Int64("bytes", n).Msg("chat stream interrupted")
		return
	}
	log.FromCtx(ctx).Debug().Int64("bytes", n).Msg("chat stream closed")
}

// relay copies src to w chunk by chunk and flushes after each write, so the
// reader is never drained faster than the client accepts bytes.
func relay(w http.ResponseWriter, src io.Reader) (int64, error) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, relayBufferSize)

	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			written, werr := w.Write(buf[:n])
			total += int64(written)
			if werr != nil {
				return total, fmt.Errorf("write to client: %w", werr)
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, fmt.Errorf("read from gateway: %w", rerr)
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, endpoint string, status int, msg string) {
	s.reply(w, endpoint, status, errorResponse{Error: msg})
}

func (s *Server) reply(w http.ResponseWriter, endpoint string, status int, resp errorResponse) {
	s.metrics.observeRequest(endpoint, status)
	writeJSON(w, status, resp)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

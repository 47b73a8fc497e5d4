package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/kevinxiao27/inkdoc/doc"
	"github.com/kevinxiao27/inkdoc/internal/config"
	"github.com/kevinxiao27/inkdoc/merge"
	"github.com/kevinxiao27/inkdoc/ol"
	"github.com/kevinxiao27/inkdoc/registry"
	"github.com/kevinxiao27/inkdoc/store"
)

type Server struct {
	cfg    config.DocumentConfig
	store  *store.Store
	logger *slog.Logger

	mu       sync.Mutex // serializes edits; protects sessions
	sessions map[store.Key]*session
}

// session is a live author editor plus how much of it has reached the store.
type session struct {
	editor *doc.Editor
	meta   store.Meta
	stored int  // log entries persisted
	dirty  bool // items changed since the last successful save
}

type ApplyResponse struct {
	Changed bool                   `json:"changed"`
	LastOp  ol.Op                  `json:"lastOp"`
	Items   registry.Map[doc.Item] `json:"items"`
}

type MergedResponse struct {
	Authors []string               `json:"authors"`
	Items   registry.Map[doc.Item] `json:"items"`
}

func NewServer(cfg config.DocumentConfig, st *store.Store, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		logger:   logger,
		sessions: make(map[store.Key]*session),
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/docs/{doc}", s.handleMerged).Methods(http.MethodGet)
	r.HandleFunc("/docs/{doc}/authors/{author}", s.handleFlat).Methods(http.MethodGet)
	r.HandleFunc("/docs/{doc}/authors/{author}/log", s.handleLog).Methods(http.MethodGet)
	r.HandleFunc("/docs/{doc}/authors/{author}/ops", s.handleApply).Methods(http.MethodPost)
	r.HandleFunc("/docs/{doc}/authors/{author}/undo", s.handleHistory(ol.Undo)).Methods(http.MethodPost)
	r.HandleFunc("/docs/{doc}/authors/{author}/redo", s.handleHistory(ol.Redo)).Methods(http.MethodPost)
	return r
}

func keyOf(r *http.Request) store.Key {
	vars := mux.Vars(r)
	return store.Key{Doc: vars["doc"], Author: vars["author"]}
}

// getSession returns the cached session for k, resuming it from its stored
// op log or starting a blank page. A resumed copy keeps the history limit it
// was recorded under, so replayed undo/redo lands where it did originally.
// Callers hold s.mu.
func (s *Server) getSession(ctx context.Context, k store.Key) (*session, error) {
	if sess, ok := s.sessions[k]; ok {
		return sess, nil
	}

	var sess *session
	rec, err := s.store.Load(ctx, k)
	switch {
	case errors.Is(err, store.ErrNotFound):
		meta := store.Meta{Width: s.cfg.Width, Height: s.cfg.Height, HistoryLimit: s.cfg.HistoryLimit}
		snap := doc.New(meta.Width, meta.Height, doc.WithHistoryLimit(meta.HistoryLimit))
		sess = &session{editor: doc.NewEditor(k.Author, snap), meta: meta}
	case err != nil:
		return nil, err
	default:
		flat := doc.Flat{Items: registry.New[doc.Item](), Operations: rec.Ops}
		e := doc.ResumeEditor(k.Author, flat, rec.Width, rec.Height, doc.WithHistoryLimit(rec.HistoryLimit))
		sess = &session{editor: e, meta: rec.Meta, stored: rec.Ops.Len()}
		if rec.HistoryLimit != s.cfg.HistoryLimit {
			s.logger.Info("keeping recorded history limit", "doc", k.Doc, "author", k.Author,
				"recorded", rec.HistoryLimit, "configured", s.cfg.HistoryLimit)
		}
		s.logger.Debug("editor resumed", "doc", k.Doc, "author", k.Author, "ops", rec.Ops.Len())
	}
	s.sessions[k] = sess
	return sess, nil
}

// persist writes every log entry and item change the store has not seen
// yet, so a failed write is caught up by the next request.
func (s *Server) persist(ctx context.Context, k store.Key, sess *session) error {
	entries := sess.editor.Log().Entries()
	if sess.stored < len(entries) {
		if err := s.store.AppendOps(ctx, k, entries[sess.stored:]); err != nil {
			return err
		}
		sess.stored = len(entries)
	}
	if sess.dirty {
		if err := s.store.SaveItems(ctx, k, sess.meta, sess.editor.Snapshot().Items()); err != nil {
			return err
		}
		sess.dirty = false
	}
	return nil
}

func (s *Server) apply(ctx context.Context, k store.Key, op ol.Op) (*ApplyResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(ctx, k)
	if err != nil {
		return nil, err
	}
	snap, changed := sess.editor.Apply(op)
	if changed {
		sess.dirty = true
	}
	if err := s.persist(ctx, k, sess); err != nil {
		return nil, err
	}

	s.logger.Info("op applied", "doc", k.Doc, "author", k.Author, "type", op.Type, "changed", changed)
	return &ApplyResponse{Changed: changed, LastOp: snap.LastOperation(), Items: snap.Items()}, nil
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var op ol.Op
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	s.respondApply(w, r, op)
}

func (s *Server) handleHistory(t ol.OpType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondApply(w, r, ol.Op{Type: t})
	}
}

func (s *Server) respondApply(w http.ResponseWriter, r *http.Request, op ol.Op) {
	resp, err := s.apply(r.Context(), keyOf(r), op)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, resp)
}

func (s *Server) handleFlat(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(r.Context(), keyOf(r))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, doc.Flatten(sess.editor.Snapshot()))
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.store.Ops(r.Context(), keyOf(r))
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.respond(w, log)
}

func (s *Server) handleMerged(w http.ResponseWriter, r *http.Request) {
	docID := mux.Vars(r)["doc"]
	authors, err := s.store.Authors(r.Context(), docID)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	if len(authors) == 0 {
		s.fail(w, http.StatusNotFound, store.ErrNotFound)
		return
	}

	streams := make([]registry.Map[doc.Item], 0, len(authors))
	for _, a := range authors {
		rec, err := s.store.Load(r.Context(), store.Key{Doc: docID, Author: a})
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		streams = append(streams, rec.Items)
	}
	s.respond(w, MergedResponse{Authors: authors, Items: merge.Streams(streams...)})
}

func (s *Server) respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, code int, err error) {
	s.logger.Warn("request failed", "status", code, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		s.logger.Error("encode response", "err", encErr)
	}
}

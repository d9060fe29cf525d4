package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"manuscript_editor/export"
	"manuscript_editor/generator"
	"manuscript_editor/rules"
)

const (
	maxUploadBytes = 10 << 20
	maxResults     = 256
	maxSessions    = 1024
)

type Server struct {
	agent     *generator.Agent
	extractor *rules.Extractor
	chatModel generator.ModelVariant
	store     *sessionStore
	results   *resultStore
}

func New(agent *generator.Agent, extractor *rules.Extractor, chatModel generator.ModelVariant) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if extractor == nil {
		return nil, errors.New("rules extractor required")
	}
	if chatModel == "" {
		chatModel = generator.ModelPro
	}
	return &Server{
		agent:     agent,
		extractor: extractor,
		chatModel: chatModel,
		store:     newStore(maxSessions),
		results:   newResultStore(maxResults),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.HandleFunc("POST /api/tasks/{id}/run", s.handleTaskRun)
	mux.HandleFunc("GET /api/results/{id}/export", s.handleExport)
	mux.HandleFunc("POST /api/rules/extract", s.handleExtract)
	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("POST /api/sessions/{id}/sync", s.handleSessionSync)
	mux.HandleFunc("POST /api/sessions/{id}/messages", s.handleSessionMessage)
	return logMiddleware(mux)
}

// --- Handlers ---

type runReq struct {
	DraftText    string `json:"draft_text"`
	RulesContext string `json:"rules_context"`
}

type runResp struct {
	Result generator.Result `json:"result"`
}

type extractResp struct {
	Kind         string `json:"kind"`
	RulesContext string `json:"rules_context"`
}

type syncReq struct {
	RulesContext string `json:"rules_context"`
}

type messageReq struct {
	RulesContext string `json:"rules_context"`
	Message      string `json:"message"`
}

type sessionResp struct {
	SessionID  string           `json:"session_id"`
	State      generator.State  `json:"state"`
	Grounding  string           `json:"grounding,omitempty"`
	Reset      bool             `json:"reset,omitempty"`
	Reply      *generator.Turn  `json:"reply,omitempty"`
	Transcript []generator.Turn `json:"transcript"`
	Notice     string           `json:"notice,omitempty"`
}

func (s *Server) handleTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, generator.Catalog())
}

func (s *Server) handleTaskRun(w http.ResponseWriter, r *http.Request) {
	task, err := generator.LookupTask(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req runReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.agent.Run(r.Context(), task, req.DraftText, req.RulesContext)
	if err != nil {
		writeError(w, err)
		return
	}
	s.results.put(res)
	writeJSON(w, http.StatusOK, runResp{Result: res})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.results.get(r.PathValue("id"))
	if !ok {
		writeErrorStatus(w, http.StatusNotFound, "result not found")
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	dl, err := export.Render(res.Title, res.Text, format)
	if err != nil {
		writeErrorStatus(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	_, _ = w.Write(dl.Body)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, fmt.Sprintf("file upload: %v", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = rules.DetectMIME(header.Filename, data)
	}

	artifact := rules.Artifact{Data: data, MIMEType: mimeType}
	text, err := s.extractor.Extract(r.Context(), artifact)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, extractResp{Kind: rules.Classify(mimeType).String(), RulesContext: text})
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	sess := generator.NewConversation(id, s.agent.LLM()).WithModel(s.chatModel)
	s.store.set(id, sess)
	writeJSON(w, http.StatusCreated, snapshot(sess))
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if !s.store.delete(r.PathValue("id")) {
		writeErrorStatus(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionSync(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req syncReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	reset, err := sess.Sync(r.Context(), req.RulesContext)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := snapshot(sess)
	resp.Reset = reset
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req messageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	turn, err := sess.Send(r.Context(), req.RulesContext, req.Message)
	if errors.Is(err, generator.ErrSessionInterrupted) {
		resp := snapshot(sess)
		resp.Notice = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	resp := snapshot(sess)
	resp.Reply = &turn
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*generator.Conversation, bool) {
	sess, ok := s.store.get(r.PathValue("id"))
	if !ok {
		writeErrorStatus(w, http.StatusNotFound, "session not found")
	}
	return sess, ok
}

func snapshot(sess *generator.Conversation) sessionResp {
	snap := sess.Snapshot()
	return sessionResp{
		SessionID:  sess.ID,
		State:      snap.State,
		Grounding:  snap.Grounding,
		Transcript: snap.Transcript,
	}
}

// mapStatus maps domain errors to HTTP status codes.
func mapStatus(err error) int {
	switch {
	case errors.Is(err, generator.ErrValidation),
		errors.Is(err, rules.ErrNoRules),
		errors.Is(err, rules.ErrInvalidText):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, rules.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, generator.ErrBackendCall),
		errors.Is(err, generator.ErrSessionInit),
		errors.Is(err, generator.ErrSessionInterrupted):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, mapStatus(err), err.Error())
}

func writeErrorStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

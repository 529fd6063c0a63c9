package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/domain/conversation"
	domusage "github.com/kailas-cloud/chatdesk/internal/domain/usage"
	logpkg "github.com/kailas-cloud/chatdesk/internal/logger"
	"github.com/kailas-cloud/chatdesk/internal/repository/session"
	healthuc "github.com/kailas-cloud/chatdesk/internal/usecase/health"
	routeruc "github.com/kailas-cloud/chatdesk/internal/usecase/router"
	searchuc "github.com/kailas-cloud/chatdesk/internal/usecase/searchchat"
	videouc "github.com/kailas-cloud/chatdesk/internal/usecase/videochat"
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is one routed turn.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	routeruc.Turn
}

// ChatHistoryResponse is the body of GET /api/v1/chat/history.
type ChatHistoryResponse struct {
	SessionID string             `json:"session_id"`
	State     conversation.State `json:"state"`
	History   []domain.Message   `json:"history"`
}

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Message string `json:"message"`
}

// SearchResponse is a search-grounded answer. Bundle is null when no search ran.
type SearchResponse struct {
	SessionID string             `json:"session_id"`
	Reply     string             `json:"reply"`
	Bundle    json.RawMessage    `json:"bundle"`
	Decision  searchuc.Decision  `json:"decision"`
	Flags     []UnexpectedOutput `json:"unexpected_outputs,omitempty"`
}

// UnexpectedOutput reports a classifier reply outside its token set.
type UnexpectedOutput struct {
	Classifier string `json:"classifier"`
	Output     string `json:"output"`
}

// VideoRequest is the body of POST /api/v1/youtube. An empty URL reuses the
// session's last video.
type VideoRequest struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// VideoResponse is a transcript-grounded answer.
type VideoResponse struct {
	SessionID           string `json:"session_id"`
	Reply               string `json:"reply"`
	VideoID             string `json:"video_id"`
	TranscriptAvailable bool   `json:"transcript_available"`
}

// EmbedTextRequest is the JSON body of POST /api/v1/embeddings.
type EmbedTextRequest struct {
	Text string `json:"text"`
}

// EmbeddingsResponse lists chunk embeddings in document order.
type EmbeddingsResponse struct {
	Embeddings  []domain.Embedding `json:"embeddings"`
	Chunks      int                `json:"chunks"`
	TotalTokens int                `json:"total_tokens"`
}

// PostChat handles POST /api/v1/chat.
func (s *Server) PostChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	// An empty message still advances the conversation.
	sess, r := s.sessionFor(w, r)
	turn, err := s.runChat(r, sess, req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{SessionID: sess.ID, Turn: turn})
}

// GetChatHistory handles GET /api/v1/chat/history.
func (s *Server) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	sess.Lock()
	defer sess.Unlock()

	writeJSON(w, http.StatusOK, ChatHistoryResponse{
		SessionID: sess.ID,
		State:     sess.Chat.State,
		History:   sess.Chat.Messages(),
	})
}

// DeleteChat handles DELETE /api/v1/chat.
func (s *Server) DeleteChat(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	sess.Lock()
	sess.Chat.Reset()
	sess.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// PostSearch handles POST /api/v1/search.
func (s *Server) PostSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "message is required")
		return
	}

	sess, r := s.sessionFor(w, r)
	ans, err := s.runSearch(r, sess, req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := SearchResponse{
		SessionID: sess.ID,
		Reply:     ans.Reply,
		Bundle:    json.RawMessage(ans.Bundle.Render()),
		Decision:  ans.Decision,
	}
	for _, u := range ans.Decision.Unexpected {
		resp.Flags = append(resp.Flags, UnexpectedOutput{Classifier: u.Classifier, Output: u.Token})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteSearch handles DELETE /api/v1/search.
func (s *Server) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	sess.Lock()
	sess.Search = nil
	sess.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// PostVideo handles POST /api/v1/youtube.
func (s *Server) PostVideo(w http.ResponseWriter, r *http.Request) {
	var req VideoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "message is required")
		return
	}

	sess, r := s.sessionFor(w, r)
	ans, err := s.runVideo(r, sess, req.URL, req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VideoResponse{
		SessionID:           sess.ID,
		Reply:               ans.Reply,
		VideoID:             ans.VideoID,
		TranscriptAvailable: ans.TranscriptAvailable,
	})
}

// DeleteVideo handles DELETE /api/v1/youtube.
func (s *Server) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	sess.Lock()
	sess.Video = nil
	sess.VideoURL = ""
	sess.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// PostEmbeddings handles POST /api/v1/embeddings. A multipart body embeds the
// PDF in its "file" part; a JSON body embeds its text.
func (s *Server) PostEmbeddings(w http.ResponseWriter, r *http.Request) {
	if s.embed == nil {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeNotConfigured, "embeddings are not configured")
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req EmbedTextRequest
		if !s.decode(w, r, &req) {
			return
		}
		res, err := s.embed.EmbedText(r.Context(), req.Text)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, embeddingsResponse(res.Embeddings, res.Chunks, res.TotalTokens))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", s.maxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "file part is required")
		return
	}
	defer func() { _ = file.Close() }()

	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/pdf" && ct != "application/octet-stream" {
		writeError(w, http.StatusUnsupportedMediaType, ErrorCodeUnsupportedDocument, "only PDF documents are supported")
		return
	}

	logpkg.FromContext(r.Context()).Info("Embedding uploaded document",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)
	res, err := s.embed.EmbedPDF(r.Context(), file, header.Size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, embeddingsResponse(res.Embeddings, res.Chunks, res.TotalTokens))
}

// GetUsage handles GET /api/v1/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeNotConfigured, "usage reporting is not configured")
		return
	}
	period, ok := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "period must be day or month")
		return
	}
	writeJSON(w, http.StatusOK, s.usage.GetReport(r.Context(), period))
}

// HealthCheck handles GET /health. Anything but a healthy report is a 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func embeddingsResponse(embs []domain.Embedding, chunks, tokens int) EmbeddingsResponse {
	if embs == nil {
		embs = []domain.Embedding{}
	}
	return EmbeddingsResponse{Embeddings: embs, Chunks: chunks, TotalTokens: tokens}
}

// runChat runs one routed turn with the session locked.
func (s *Server) runChat(r *http.Request, sess *session.Session, message string) (routeruc.Turn, error) {
	sess.Lock()
	defer sess.Unlock()
	return s.chat.Discuss(r.Context(), sess.Chat, message)
}

// runSearch records the question, answers it over the session's search
// history and records the reply. A failed turn keeps the question.
func (s *Server) runSearch(r *http.Request, sess *session.Session, question string) (searchuc.Answer, error) {
	sess.Lock()
	defer sess.Unlock()

	sess.Search = append(sess.Search, domain.UserMessage(question))
	ans, err := s.search.Ask(r.Context(), question, sess.Search)
	if err != nil {
		return searchuc.Answer{}, err
	}
	sess.Search = append(sess.Search, domain.AssistantMessage(ans.Reply))
	return ans, nil
}

// runVideo is runSearch for the video page. An empty rawURL reuses the
// session's last video.
func (s *Server) runVideo(r *http.Request, sess *session.Session, rawURL, question string) (videouc.Answer, error) {
	sess.Lock()
	defer sess.Unlock()

	if rawURL = strings.TrimSpace(rawURL); rawURL != "" {
		sess.VideoURL = rawURL
	}
	sess.Video = append(sess.Video, domain.UserMessage(question))
	ans, err := s.video.AskURL(r.Context(), sess.VideoURL, question, sess.Video)
	if err != nil {
		return videouc.Answer{}, err
	}
	sess.Video = append(sess.Video, domain.AssistantMessage(ans.Reply))
	return ans, nil
}

// decode reads a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body")
		return false
	}
	return true
}

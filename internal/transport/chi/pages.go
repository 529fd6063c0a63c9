package chi

import (
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	"github.com/kailas-cloud/chatdesk/internal/repository/session"
	videouc "github.com/kailas-cloud/chatdesk/internal/usecase/videochat"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "chat", "search", "youtube"}

func parsePages() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return pages
}

type pageMessage struct {
	Role domain.Role
	HTML template.HTML
}

type pageView struct {
	Title    string
	Active   string
	Error    string
	State    string
	VideoURL string
	VideoID  string
	Messages []pageMessage
}

// pageMessages renders user and assistant messages. System messages are hidden.
func pageMessages(history []domain.Message) []pageMessage {
	out := make([]pageMessage, 0, len(history))
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			continue
		}
		out = append(out, pageMessage{Role: m.Role, HTML: renderMarkdown(m.Content)})
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, status int, name string, v pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[name].ExecuteTemplate(w, "layout", v); err != nil {
		s.logger.Error("Failed to render page", zap.String("page", name), zap.Error(err))
	}
}

func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// IndexPage handles GET /.
func (s *Server) IndexPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "index", pageView{Title: "chatdesk", Active: "home"})
}

// ChatPage handles GET /chat.
func (s *Server) ChatPage(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	s.render(w, http.StatusOK, "chat", s.chatView(sess, ""))
}

// ChatSubmit handles POST /chat.
func (s *Server) ChatSubmit(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	message := r.PostFormValue("message")
	if message == "" {
		seeOther(w, r, "/chat")
		return
	}
	if _, err := s.runChat(r, sess, message); err != nil {
		ae := s.classify(err)
		s.render(w, ae.status, "chat", s.chatView(sess, ae.msg))
		return
	}
	seeOther(w, r, "/chat")
}

// ChatReset handles POST /chat/reset.
func (s *Server) ChatReset(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	sess.Lock()
	sess.Chat.Reset()
	sess.Unlock()
	seeOther(w, r, "/chat")
}

func (s *Server) chatView(sess *session.Session, errMsg string) pageView {
	sess.Lock()
	defer sess.Unlock()
	return pageView{
		Title:    "Chat",
		Active:   "chat",
		Error:    errMsg,
		State:    sess.Chat.State.String(),
		Messages: pageMessages(sess.Chat.History),
	}
}

// SearchPage handles GET /search.
func (s *Server) SearchPage(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	s.render(w, http.StatusOK, "search", s.searchView(sess, ""))
}

// SearchSubmit handles POST /search.
func (s *Server) SearchSubmit(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	question := r.PostFormValue("message")
	if question == "" {
		seeOther(w, r, "/search")
		return
	}
	if _, err := s.runSearch(r, sess, question); err != nil {
		ae := s.classify(err)
		s.render(w, ae.status, "search", s.searchView(sess, ae.msg))
		return
	}
	seeOther(w, r, "/search")
}

// SearchReset handles POST /search/reset.
func (s *Server) SearchReset(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	sess.Lock()
	sess.Search = nil
	sess.Unlock()
	seeOther(w, r, "/search")
}

func (s *Server) searchView(sess *session.Session, errMsg string) pageView {
	sess.Lock()
	defer sess.Unlock()
	return pageView{Title: "Search", Active: "search", Error: errMsg, Messages: pageMessages(sess.Search)}
}

// VideoPage handles GET /youtube.
func (s *Server) VideoPage(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	s.render(w, http.StatusOK, "youtube", s.videoView(sess, ""))
}

// VideoSubmit handles POST /youtube.
func (s *Server) VideoSubmit(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	question := r.PostFormValue("message")
	if question == "" {
		seeOther(w, r, "/youtube")
		return
	}
	if _, err := s.runVideo(r, sess, r.PostFormValue("url"), question); err != nil {
		ae := s.classify(err)
		s.render(w, ae.status, "youtube", s.videoView(sess, ae.msg))
		return
	}
	seeOther(w, r, "/youtube")
}

// VideoReset handles POST /youtube/reset.
func (s *Server) VideoReset(w http.ResponseWriter, r *http.Request) {
	sess, r := s.sessionFor(w, r)
	sess.Lock()
	sess.Video = nil
	sess.VideoURL = ""
	sess.Unlock()
	seeOther(w, r, "/youtube")
}

func (s *Server) videoView(sess *session.Session, errMsg string) pageView {
	sess.Lock()
	defer sess.Unlock()
	return pageView{
		Title:    "YouTube",
		Active:   "youtube",
		Error:    errMsg,
		VideoURL: sess.VideoURL,
		VideoID:  videouc.VideoIDFromURL(sess.VideoURL),
		Messages: pageMessages(sess.Video),
	}
}

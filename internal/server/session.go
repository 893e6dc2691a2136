package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	minidocs "github.com/alnah/go-minidocs"
)

// writeWait bounds a single WebSocket write.
const writeWait = 10 * time.Second

// Client message types.
const (
	msgOpen   = "open"
	msgEdit   = "edit"
	msgPaged  = "paged"
	msgInsert = "insert"
)

// Server message types.
const (
	msgReady    = "ready"
	msgDocument = "document"
	msgPages    = "pages"
	msgError    = "error"
)

// sessionRequest is the incoming WebSocket message format.
type sessionRequest struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`    // open
	Title    string `json:"title,omitempty"` // open
	HTML     string `json:"html,omitempty"`  // open, edit
	Paged    bool   `json:"paged,omitempty"` // paged
	Markdown string `json:"markdown,omitempty"`
}

// sessionResponse is the outgoing WebSocket message format.
type sessionResponse struct {
	Type     string             `json:"type"`
	Session  string             `json:"session"`
	Document *minidocs.Document `json:"document,omitempty"`
	Paged    bool               `json:"paged"`
	Pages    []string           `json:"pages,omitempty"`
	HTML     string             `json:"html,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// wsConn serializes writes: pagination results arrive from the debounce
// timer while the read loop answers requests.
type wsConn struct {
	id   string
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(resp sessionResponse) {
	resp.Session = c.id
	c.mu.Lock()
	defer c.mu.Unlock()
	// The server write deadline survives the upgrade; each message gets
	// its own.
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(resp); err != nil {
		log.Printf("server: session %s: websocket write: %v", c.id, err)
	}
}

func (c *wsConn) sendError(paged bool, msg string) {
	c.send(sessionResponse{Type: msgError, Paged: paged, Error: msg})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	c := &wsConn{id: uuid.NewString(), conn: conn}
	opts := []minidocs.SessionOption{
		minidocs.WithSessionTimeout(s.cfg.RequestTimeout),
		minidocs.WithPagesHandler(func(res *minidocs.PagedResult, err error) {
			if err != nil {
				c.sendError(true, err.Error())
				return
			}
			c.send(sessionResponse{Type: msgPages, Paged: true, Pages: res.Pages, HTML: res.HTML})
		}),
	}
	if s.cfg.Debounce > 0 {
		opts = append(opts, minidocs.WithDebounce(s.cfg.Debounce))
	}
	sess := minidocs.NewSession(poolBackend{s}, opts...)
	s.track(c.id, sess)
	defer s.untrack(c.id)

	c.send(sessionResponse{Type: msgReady})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: session %s: websocket read: %v", c.id, err)
			}
			return
		}

		var req sessionRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			c.sendError(sess.Paged(), "invalid message format")
			continue
		}
		s.dispatch(r.Context(), c, sess, req)
	}
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, sess *minidocs.Session, req sessionRequest) {
	switch req.Type {
	case msgOpen:
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		doc := minidocs.Document{ID: id, Title: req.Title, ContentHTML: req.HTML}
		if err := sess.Open(doc); err != nil {
			c.sendError(sess.Paged(), err.Error())
			return
		}
		c.send(sessionResponse{Type: msgDocument, Document: &doc, Paged: sess.Paged()})

	case msgEdit:
		if err := sess.Edit(req.HTML); err != nil {
			c.sendError(sess.Paged(), err.Error())
		}

	case msgPaged:
		ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		// Pagination outcomes, failures included, go through the pages
		// handler.
		_, err := sess.SetPaged(ctx, req.Paged)
		if errors.Is(err, minidocs.ErrNoDocument) || errors.Is(err, minidocs.ErrSessionClosed) {
			c.sendError(false, err.Error())
			return
		}
		if err != nil {
			return
		}
		if !req.Paged {
			c.send(sessionResponse{Type: msgPages, Paged: false})
		}

	case msgInsert:
		ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
		if _, err := sess.InsertMarkdown(ctx, req.Markdown); err != nil {
			c.sendError(sess.Paged(), err.Error())
			return
		}
		doc, _ := sess.Document()
		c.send(sessionResponse{Type: msgDocument, Document: &doc, Paged: sess.Paged()})

	default:
		c.sendError(sess.Paged(), "unknown message type: "+req.Type)
	}
}

func (s *Server) track(id string, sess *minidocs.Session) {
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	sess := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

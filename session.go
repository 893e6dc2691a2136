package minidocs

import (
	"context"
	"sync"
	"time"

	"github.com/alnah/go-minidocs/internal/debounce"
)

// SessionBackend is the part of Editor a Session drives.
type SessionBackend interface {
	Paginate(ctx context.Context, in PaginateInput) (*PagedResult, error)
	InsertMarkdown(ctx context.Context, documentHTML, markdown string) (string, error)
}

// PagesHandler receives the outcome of every pagination run by a Session,
// including the debounced ones.
type PagesHandler func(res *PagedResult, err error)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounce sets the quiet period between an edit and the pagination it
// triggers in paged mode (default 300ms).
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) { s.delay = d }
}

// WithPagesHandler registers the callback for pagination results.
func WithPagesHandler(fn PagesHandler) SessionOption {
	return func(s *Session) { s.onPages = fn }
}

// WithSessionTimeout bounds each debounced pagination (default 30s).
func WithSessionTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// Session holds the state of one editor view: the open document, whether
// paged mode is on and the last pages produced. Edits in paged mode are
// paginated after a debounce delay; a pagination started before a newer
// one may still deliver its result last.
//
// A Session is safe for concurrent use.
type Session struct {
	backend SessionBackend
	delay   time.Duration
	timeout time.Duration
	onPages PagesHandler

	mu       sync.Mutex
	doc      *Document
	paged    bool
	pages    *PagedResult
	closed   bool
	debounce *debounce.Debouncer

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates a Session over backend, typically an *Editor.
func NewSession(backend SessionBackend, opts ...SessionOption) *Session {
	s := &Session{backend: backend, delay: debounce.DefaultDelay, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.debounce = debounce.New(s.delay, s.paginateDebounced)
	return s
}

// Open makes doc the current document and drops the previous pages. In
// paged mode the new document is paginated after the debounce delay.
func (s *Session) Open(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.doc = &doc
	s.pages = nil
	if s.paged {
		s.debounce.Trigger()
	}
	return nil
}

// Document returns a copy of the current document.
func (s *Session) Document() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return Document{}, false
	}
	return *s.doc, true
}

// Edit replaces the document content. In paged mode it schedules a
// debounced pagination; a burst of edits paginates once.
func (s *Session) Edit(contentHTML string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(); err != nil {
		return err
	}
	s.doc.ContentHTML = contentHTML
	if s.paged {
		s.debounce.Trigger()
	}
	return nil
}

// Paged reports whether paged mode is on.
func (s *Session) Paged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paged
}

// SetPaged switches paged mode. Turning it on paginates immediately and
// returns the pages; turning it off cancels any pending pagination.
func (s *Session) SetPaged(ctx context.Context, on bool) (*PagedResult, error) {
	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.paged = on
	if !on {
		s.debounce.Cancel()
		s.pages = nil
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// TogglePaged flips paged mode and reports the new state.
func (s *Session) TogglePaged(ctx context.Context) (bool, *PagedResult, error) {
	on := !s.Paged()
	res, err := s.SetPaged(ctx, on)
	return on, res, err
}

// InsertMarkdown converts markdown, appends it to the document and renders
// the visual blocks of the result. Returns the new content.
func (s *Session) InsertMarkdown(ctx context.Context, markdown string) (string, error) {
	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	current := s.doc.ContentHTML
	s.mu.Unlock()

	updated, err := s.backend.InsertMarkdown(ctx, current, markdown)
	if err != nil {
		return "", err
	}
	if err := s.Edit(updated); err != nil {
		return "", err
	}
	return updated, nil
}

// Refresh paginates the current document now, cancelling any pending
// debounced run. The result is kept as Pages only in paged mode.
func (s *Session) Refresh(ctx context.Context) (*PagedResult, error) {
	s.mu.Lock()
	if err := s.checkLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.debounce.Cancel()
	doc := *s.doc
	s.mu.Unlock()

	return s.paginate(ctx, doc)
}

// Pages returns the last pagination result, or nil.
func (s *Session) Pages() *PagedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

// Close stops pending work. Further calls return ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.debounce.Stop()
	s.cancel()
}

func (s *Session) checkLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.doc == nil {
		return ErrNoDocument
	}
	return nil
}

// paginateDebounced runs on the debounce timer.
func (s *Session) paginateDebounced() {
	s.mu.Lock()
	if s.closed || s.doc == nil || !s.paged {
		s.mu.Unlock()
		return
	}
	doc := *s.doc
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	_, _ = s.paginate(ctx, doc)
}

func (s *Session) paginate(ctx context.Context, doc Document) (*PagedResult, error) {
	res, err := s.backend.Paginate(ctx, PaginateInput{
		HTML:         doc.ContentHTML,
		Title:        doc.Title,
		RenderVisual: true,
	})

	s.mu.Lock()
	if err == nil && s.paged && !s.closed {
		s.pages = res
	}
	handler := s.onPages
	s.mu.Unlock()

	if handler != nil {
		handler(res, err)
	}
	return res, err
}

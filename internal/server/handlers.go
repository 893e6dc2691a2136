package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	minidocs "github.com/alnah/go-minidocs"
	"github.com/alnah/go-minidocs/internal/mermaid"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 10 << 20

type sanitizeRequest struct {
	Source string `json:"source"`
}

type sanitizeResponse struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
}

type renderRequest struct {
	HTML string `json:"html"`
}

type htmlResponse struct {
	HTML string `json:"html"`
}

type paginateRequest struct {
	HTML   string `json:"html"`
	Title  string `json:"title"`
	Render bool   `json:"render"`
}

type paginateResponse struct {
	Pages []string `json:"pages"`
	HTML  string   `json:"html"`
}

type markdownRequest struct {
	Markdown string `json:"markdown"`
	Render   bool   `json:"render"`
}

func handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req sanitizeRequest
	if !decode(w, r, &req) {
		return
	}
	out := mermaid.Sanitize(req.Source)
	writeJSON(w, http.StatusOK, sanitizeResponse{
		Source: out,
		Kind:   string(mermaid.DetectKind(out)),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decode(w, r, &req) {
		return
	}
	var out string
	err := s.withEditor(r.Context(), func(ed *minidocs.Editor) (err error) {
		out, err = ed.RenderVisualBlocks(r.Context(), req.HTML)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, htmlResponse{HTML: out})
}

func (s *Server) handlePaginate(w http.ResponseWriter, r *http.Request) {
	var req paginateRequest
	if !decode(w, r, &req) {
		return
	}
	var res *minidocs.PagedResult
	err := s.withEditor(r.Context(), func(ed *minidocs.Editor) (err error) {
		res, err = ed.Paginate(r.Context(), minidocs.PaginateInput{
			HTML:         req.HTML,
			Title:        req.Title,
			RenderVisual: req.Render,
		})
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paginateResponse{Pages: res.Pages, HTML: res.HTML})
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	var req markdownRequest
	if !decode(w, r, &req) {
		return
	}
	var out string
	err := s.withEditor(r.Context(), func(ed *minidocs.Editor) (err error) {
		out, err = ed.MarkdownToHTML(r.Context(), req.Markdown)
		if err != nil || !req.Render {
			return err
		}
		out, err = ed.RenderVisualBlocks(r.Context(), out)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, htmlResponse{HTML: out})
}

// handleStyle serves the paged ("pages.css") or continuous ("editor.css")
// stylesheet, so clients render with the geometry the server paginates at.
func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != "pages.css" && name != "editor.css" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown stylesheet: " + name})
		return
	}
	var css string
	err := s.withEditor(r.Context(), func(ed *minidocs.Editor) error {
		if name == "pages.css" {
			css = ed.PageCSS()
		} else {
			css = ed.FlowCSS()
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(css))
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps backend errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, minidocs.ErrPoolClosed), errors.Is(err, minidocs.ErrBrowserConnect),
		errors.Is(err, minidocs.ErrScriptLoad):
		return http.StatusServiceUnavailable
	case errors.Is(err, minidocs.ErrHTMLParse), errors.Is(err, minidocs.ErrHTMLConversion):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("server: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: writing response: %v", err)
	}
}

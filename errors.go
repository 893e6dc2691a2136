package minidocs

import (
	"errors"

	"github.com/alnah/go-minidocs/internal/paginate"
)

// Sentinel errors for library operations.
var (
	ErrEmptyContent     = errors.New("document content cannot be empty")
	ErrHTMLParse        = errors.New("failed to parse document HTML")
	ErrHTMLConversion   = errors.New("HTML conversion failed")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageCreate       = errors.New("failed to create browser page")
	ErrPageLoad         = errors.New("failed to load page")
	ErrScriptLoad       = errors.New("renderer script not loaded")
	ErrMeasure          = errors.New("layout measurement failed")
	ErrRender           = errors.New("visual block rendering failed")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// ErrInvalidGeometry is returned for page sizes or margins that leave no
	// content area.
	ErrInvalidGeometry = paginate.ErrInvalidGeometry

	// Session errors.
	ErrNoDocument    = errors.New("no document open")
	ErrSessionClosed = errors.New("session closed")

	// Pool errors.
	ErrPoolClosed = errors.New("editor pool closed")
)

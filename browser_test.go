package minidocs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

func evalError(text, description string) *rod.EvalError {
	details := &proto.RuntimeExceptionDetails{Text: text}
	if description != "" {
		details.Exception = &proto.RuntimeRemoteObject{Description: description}
	}
	return &rod.EvalError{RuntimeExceptionDetails: details}
}

// ---------------------------------------------------------------------------
// TestExceptionMessage - JavaScript error text extraction
// ---------------------------------------------------------------------------

func TestExceptionMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *rod.EvalError
		want string
	}{
		{
			name: "description without stack",
			err:  evalError("Uncaught", "Error: Parse error on line 2:\nA --> \n------^\n    at Object.parse (mermaid.js:1:2)"),
			want: "Parse error on line 2:\nA --> \n------^",
		},
		{
			name: "text only",
			err:  evalError("Uncaught boom", ""),
			want: "boom",
		},
		{
			name: "no details",
			err:  &rod.EvalError{},
			want: "javascript evaluation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exceptionMessage(tt.err); got != tt.want {
				t.Errorf("exceptionMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestEngineError - Browser failure classification
// ---------------------------------------------------------------------------

func TestEngineError(t *testing.T) {
	t.Parallel()

	b := newRodBrowser(defaultTimeout, "")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"cancellation passes through", context.Canceled, context.Canceled},
		{"deadline passes through", fmt.Errorf("eval: %w", context.DeadlineExceeded), context.DeadlineExceeded},
		{"connect failure passes through", fmt.Errorf("%w: no chrome", ErrBrowserConnect), ErrBrowserConnect},
		{"missing script", evalError("Uncaught", "Error: mermaid is not loaded"), ErrScriptLoad},
		{"other failure wrapped", errors.New("target closed"), ErrRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := b.engineError(ErrRender, tt.err); !errors.Is(got, tt.want) {
				t.Errorf("engineError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRodBrowser_CloseUnstarted(t *testing.T) {
	t.Parallel()

	b := newRodBrowser(defaultTimeout, "<html></html>")
	if err := b.Close(); err != nil {
		t.Errorf("Close() on an unstarted browser = %v", err)
	}
}

package chart

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantType string
		wantErr  bool
	}{
		{name: "bar config", input: `{"type":"bar","data":{"labels":["a"]}}`, wantType: "bar"},
		{name: "surrounding whitespace", input: "\n  {\"type\":\"Funnel\"}\n", wantType: "funnel"},
		{name: "not json", input: "type: bar", wantErr: true},
		{name: "array", input: `[1,2]`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("Parse(%q) error = %v, want ErrInvalidConfig", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got := Type(cfg); got != tt.wantType {
				t.Errorf("Type() = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestIsMissingFunnelController(t *testing.T) {
	t.Parallel()

	funnel := Config{"type": "FUNNEL"}
	bar := Config{"type": "bar"}
	missing := errors.New(`"funnel" is not a registered controller.`)

	tests := []struct {
		name string
		cfg  Config
		err  error
		want bool
	}{
		{name: "funnel missing controller", cfg: funnel, err: missing, want: true},
		{name: "case insensitive message", cfg: funnel, err: errors.New("FUNNEL IS NOT A REGISTERED CONTROLLER"), want: true},
		{name: "other type", cfg: bar, err: missing, want: false},
		{name: "other error", cfg: funnel, err: errors.New("canvas is null"), want: false},
		{name: "no error", cfg: funnel, err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsMissingFunnelController(tt.cfg, tt.err); got != tt.want {
				t.Errorf("IsMissingFunnelController() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFunnelAsBar(t *testing.T) {
	t.Parallel()

	src, err := Parse(`{
		"type": "funnel",
		"data": {"labels": ["Visit", "Cart", "Buy"], "datasets": [{"label": "Users", "data": [100, 40, 7.5]}]},
		"options": {"plugins": {"title": {"text": "Sales"}}, "maintainAspectRatio": false}
	}`)
	if err != nil {
		t.Fatal(err)
	}

	got := FunnelAsBar(src)

	if got["type"] != "bar" {
		t.Errorf("type = %v, want bar", got["type"])
	}
	data := got["data"].(map[string]any)
	if !reflect.DeepEqual(data["labels"], []any{"Visit", "Cart", "Buy"}) {
		t.Errorf("labels = %v", data["labels"])
	}
	ds := data["datasets"].([]any)[0].(map[string]any)
	if ds["label"] != "Users" {
		t.Errorf("dataset label = %v, want Users", ds["label"])
	}
	want := []any{json.Number("100"), json.Number("40"), json.Number("7.5")}
	if !reflect.DeepEqual(ds["data"], want) {
		t.Errorf("dataset data = %v, want %v", ds["data"], want)
	}

	opts := got["options"].(map[string]any)
	if opts["indexAxis"] != "y" {
		t.Errorf("indexAxis = %v, want y", opts["indexAxis"])
	}
	if opts["maintainAspectRatio"] != false {
		t.Errorf("source option not overlaid: %v", opts["maintainAspectRatio"])
	}
	// The source "plugins" replaces the default one wholesale.
	plugins := opts["plugins"].(map[string]any)
	if _, ok := plugins["legend"]; ok {
		t.Error("default legend should be replaced by source plugins")
	}

	// Source config must be left untouched.
	if src["type"] != "funnel" {
		t.Errorf("source mutated: type = %v", src["type"])
	}
}

func TestFunnelAsBar_Defaults(t *testing.T) {
	t.Parallel()

	got := FunnelAsBar(Config{"type": "funnel"})

	data := got["data"].(map[string]any)
	ds := data["datasets"].([]any)[0].(map[string]any)
	if ds["label"] != "Funnel" {
		t.Errorf("dataset label = %v, want Funnel", ds["label"])
	}
	if n := len(ds["data"].([]any)); n != 0 {
		t.Errorf("dataset data has %d values, want 0", n)
	}
	title := got["options"].(map[string]any)["plugins"].(map[string]any)["title"].(map[string]any)
	if title["display"] != false || title["text"] != "Funnel (bar fallback)" {
		t.Errorf("title = %v, want hidden fallback title", title)
	}
}

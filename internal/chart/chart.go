// Package chart parses Chart.js configurations embedded in documents and
// provides the funnel-to-bar fallback used when the funnel controller is
// not registered in the chart engine.
package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Config is a decoded Chart.js configuration object.
type Config = map[string]any

// ErrInvalidConfig is returned when a chart block is not a JSON object.
var ErrInvalidConfig = errors.New("invalid chart configuration")

// FallbackNotice is shown under a funnel chart drawn as a bar chart.
const FallbackNotice = "⚠️ The Chart.js funnel plugin is not loaded; showing a horizontal bar fallback."

// Height is the canvas height, in CSS pixels, charts are drawn at.
const Height = 320

// Parse decodes text as a chart configuration. Numbers keep their literal
// form so re-encoding does not alter them.
func Parse(text string) (Config, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(text)))
	dec.UseNumber()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidConfig)
	}
	return cfg, nil
}

// Type returns the lower-cased "type" field, or "".
func Type(cfg Config) string {
	t, _ := cfg["type"].(string)
	return strings.ToLower(t)
}

var (
	missingControllerRe = regexp.MustCompile(`(?i)not a registered controller`)
	funnelRe            = regexp.MustCompile(`(?i)funnel`)
)

// IsMissingFunnelController reports whether err is the engine refusing a
// funnel chart because no funnel controller is registered.
func IsMissingFunnelController(cfg Config, err error) bool {
	if err == nil || Type(cfg) != "funnel" {
		return false
	}
	msg := err.Error()
	return missingControllerRe.MatchString(msg) && funnelRe.MatchString(msg)
}

// FunnelAsBar converts a funnel configuration into a horizontal bar chart
// with the same labels and first dataset. Source options are laid over the
// defaults key by key. cfg is not modified.
func FunnelAsBar(cfg Config) Config {
	src := deepCopy(cfg)

	data, _ := src["data"].(map[string]any)
	labels, _ := data["labels"].([]any)
	if labels == nil {
		labels = []any{}
	}

	dataset := map[string]any{}
	if sets, ok := data["datasets"].([]any); ok && len(sets) > 0 {
		if first, ok := sets[0].(map[string]any); ok {
			dataset = first
		}
	}
	values, _ := dataset["data"].([]any)
	if values == nil {
		values = []any{}
	}
	label, _ := dataset["label"].(string)
	if label == "" {
		label = "Funnel"
	}

	srcOptions, _ := src["options"].(map[string]any)
	titleText := nestedString(srcOptions, "plugins", "title", "text")

	options := map[string]any{
		"indexAxis":  "y",
		"responsive": true,
		"plugins": map[string]any{
			"legend": map[string]any{"display": true},
			"title": map[string]any{
				"display": titleText != "",
				"text":    firstNonEmpty(titleText, "Funnel (bar fallback)"),
			},
		},
		"scales": map[string]any{
			"x": map[string]any{"beginAtZero": true},
		},
	}
	for k, v := range srcOptions {
		options[k] = v
	}

	return Config{
		"type": "bar",
		"data": map[string]any{
			"labels": labels,
			"datasets": []any{map[string]any{
				"label":       label,
				"data":        values,
				"borderWidth": 1,
			}},
		},
		"options": options,
	}
}

func deepCopy(cfg Config) Config {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(cfg); err != nil {
		return Config{}
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var out Config
	if err := dec.Decode(&out); err != nil || out == nil {
		return Config{}
	}
	return out
}

func nestedString(m map[string]any, path ...string) string {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

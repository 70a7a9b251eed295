// ABOUTME: Tests for the TemplateEngine that renders the embedded editor page.
// ABOUTME: Covers parsing, default page data, configured values and HTML escaping of the document.
package web

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/mdpreview/editor"
)

func TestTemplatesParse(t *testing.T) {
	engine, err := NewTemplateEngine()
	if err != nil {
		t.Fatalf("failed to create template engine: %v", err)
	}
	if engine == nil {
		t.Fatal("expected non-nil template engine")
	}
}

func TestIndexRendersDefaults(t *testing.T) {
	engine, err := NewTemplateEngine()
	if err != nil {
		t.Fatalf("failed to create template engine: %v", err)
	}

	var buf bytes.Buffer
	if err := engine.RenderTo(&buf, "index.html", DefaultPageData()); err != nil {
		t.Fatalf("failed to render: %v", err)
	}

	body := buf.String()
	for _, want := range []string{
		`<!doctype html>`,
		`data-theme="dark"`,
		`data-debounce-ms="300"`,
		`data-timeout-ms="5000"`,
		`class="workspace split"`,
		`data-mode="split" class="active">Split</button>`,
		"Welcome to mdpreview",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestIndexRendersConfiguredValues(t *testing.T) {
	engine, err := NewTemplateEngine()
	if err != nil {
		t.Fatalf("failed to create template engine: %v", err)
	}

	var buf bytes.Buffer
	data := PageData{
		Title:    "notes",
		Document: "<script>alert(1)</script>",
		Debounce: 750 * time.Millisecond,
		Timeout:  2 * time.Second,
		ViewMode: editor.ViewPreview,
		DarkMode: false,
	}
	if err := engine.RenderTo(&buf, "index.html", data); err != nil {
		t.Fatalf("failed to render: %v", err)
	}

	body := buf.String()
	for _, want := range []string{
		`<title>notes</title>`,
		`data-theme="light"`,
		`data-debounce-ms="750"`,
		`data-timeout-ms="2000"`,
		`class="workspace preview"`,
		`&lt;script&gt;alert(1)&lt;/script&gt;`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "<script>alert(1)") {
		t.Error("document must be escaped")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewTemplateEngine()
	if err != nil {
		t.Fatalf("failed to create template engine: %v", err)
	}
	if err := engine.RenderTo(&bytes.Buffer{}, "missing.html", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

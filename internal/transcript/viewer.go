// ABOUTME: HTML transcript page listing every logged question/answer exchange
// ABOUTME: Questions are escaped by html/template; answers go through goldmark with raw HTML escaped

package transcript

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/2389/chatrelay/internal/auth"
	"github.com/2389/chatrelay/internal/store"
)

// DefaultTitle is the page heading when none is configured.
const DefaultTitle = "Conversations"

// EntrySource supplies the entries to render, in display order.
type EntrySource interface {
	All(ctx context.Context) ([]*store.LogEntry, error)
}

// Viewer renders the conversation log as an HTML page.
type Viewer struct {
	source EntrySource
	title  string
	tmpl   *template.Template
	md     goldmark.Markdown
	logger *slog.Logger
}

type pageData struct {
	Title   string
	Viewer  string
	Count   int
	Entries []entryView
}

type entryView struct {
	ID       string
	ThreadID string
	Time     string
	ISOTime  string
	Question string
	Answer   template.HTML
}

// New parses the page template and returns a Viewer over source.
func New(source EntrySource, title string, logger *slog.Logger) (*Viewer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if title == "" {
		title = DefaultTitle
	}

	tmpl, err := template.ParseFS(templateFS, "templates/logs.html")
	if err != nil {
		return nil, fmt.Errorf("parsing transcript template: %w", err)
	}

	return &Viewer{
		source: source,
		title:  title,
		tmpl:   tmpl,
		md:     newMarkdown(),
		logger: logger.With("component", "transcript"),
	}, nil
}

// ServeHTTP renders every entry currently in the log.
func (v *Viewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entries, err := v.source.All(r.Context())
	if err != nil {
		v.logger.Error("failed to load conversation log", "error", err)
		http.Error(w, "failed to load conversations", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := v.Render(&buf, entries, auth.ViewerFromContext(r.Context())); err != nil {
		v.logger.Error("failed to render transcript", "error", err)
		http.Error(w, "failed to render conversations", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// Render writes the page for entries. Output depends only on its arguments.
func (v *Viewer) Render(w io.Writer, entries []*store.LogEntry, viewer string) error {
	data := pageData{
		Title:   v.title,
		Viewer:  viewer,
		Count:   len(entries),
		Entries: make([]entryView, 0, len(entries)),
	}
	for _, e := range entries {
		ts := e.Timestamp.UTC()
		data.Entries = append(data.Entries, entryView{
			ID:       e.ID,
			ThreadID: e.ThreadID,
			Time:     ts.Format("2006-01-02 15:04:05 UTC"),
			ISOTime:  ts.Format(time.RFC3339),
			Question: e.Question,
			Answer:   v.renderAnswer(e.Answer),
		})
	}
	return v.tmpl.Execute(w, data)
}

func (v *Viewer) renderAnswer(answer string) template.HTML {
	var buf bytes.Buffer
	if err := v.md.Convert([]byte(answer), &buf); err != nil {
		v.logger.Warn("failed to convert answer markdown", "error", err)
		return template.HTML("<p>" + template.HTMLEscapeString(answer) + "</p>")
	}
	return template.HTML(buf.String())
}

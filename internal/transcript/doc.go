// Package transcript renders the conversation log as a read-only HTML page.
//
// The Viewer is an http.Handler meant to sit behind auth.BasicAuth. Every
// log-derived string is escaped: questions by html/template, answers by
// goldmark's default renderer, which keeps Markdown formatting but omits raw
// HTML and unsafe link targets.
package transcript

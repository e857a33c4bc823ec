// Package report renders a completed run as a standalone HTML page for
// --report-html: a Markdown summary converted with goldmark, the same way
// the rest of the stack turns prose into HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ifregtest/ifregtest/internal/driver"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Table))

const pageTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>ifregtest report</title>
<style>
body { font-family: sans-serif; max-width: 72em; margin: 2em auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3em 0.6em; }
.fail { color: #b00; }
.pass { color: #080; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Render converts a RunResult into a full HTML document.
func Render(result *driver.RunResult) ([]byte, error) {
	var markdown strings.Builder
	fmt.Fprintf(&markdown, "# ifregtest run report\n\n")
	fmt.Fprintf(&markdown, "Total errors: **%d**\n\n", result.ErrorCount())
	if result.AbortedRun {
		markdown.WriteString("Run aborted early after repeated vital failures.\n\n")
	}

	markdown.WriteString("| Test | Status | Errors |\n|---|---|---|\n")
	for _, t := range result.Tests {
		status := "pass"
		if len(t.Failures) > 0 {
			status = "fail"
		}
		if t.Aborted {
			status += " (aborted)"
		}
		fmt.Fprintf(&markdown, "| %s | %s | %d |\n", t.Name, status, len(t.Failures))
	}
	markdown.WriteString("\n")

	for _, t := range result.Tests {
		if len(t.Failures) == 0 {
			continue
		}
		fmt.Fprintf(&markdown, "## %s\n\n", t.Name)
		for _, f := range t.Failures {
			fmt.Fprintf(&markdown, "- line %d (%s): %s — %s\n", f.Line, f.Target, f.Check, f.Reason)
		}
		markdown.WriteString("\n")
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown.String()), &body); err != nil {
		return nil, fmt.Errorf("render report markdown: %w", err)
	}
	return []byte(fmt.Sprintf(pageTemplate, body.String())), nil
}

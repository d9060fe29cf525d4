// Package export turns task results into downloadable files.
package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Download is a file ready to be sent to the user.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Format of an export.
type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
)

// ParseFormat accepts "txt"/"text" and "html"; empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want txt or html)", s)
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Filename derives a file name from a task title.
func Filename(title string, f Format) string {
	name := slug.Make(title)
	if name == "" {
		name = "result"
	}
	return name + "." + string(f)
}

// Render builds the download for text in the given format.
func Render(title, text string, f Format) (Download, error) {
	switch f {
	case FormatHTML:
		return HTML(title, text)
	default:
		return PlainText(title, text), nil
	}
}

// PlainText exports the result verbatim as UTF-8.
func PlainText(title, text string) Download {
	return Download{
		Filename:    Filename(title, FormatText),
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(text),
	}
}

// HTML renders the model's markdown into a standalone page.
func HTML(title, markdown string) (Download, error) {
	body, err := mdToHTML(markdown)
	if err != nil {
		return Download{}, err
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))
	page.WriteString("</head>\n<body>\n")
	if title != "" {
		page.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(title)))
	}
	page.WriteString(body)
	page.WriteString("</body>\n</html>\n")

	return Download{
		Filename:    Filename(title, FormatHTML),
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(page.String()),
	}, nil
}

func mdToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

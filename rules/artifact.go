// Package rules turns uploaded journal guidelines into a rules context string.
package rules

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Kind is the class an artifact is resolved to at intake.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPlainText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPlainText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unsupported"
	}
}

// Artifact is an uploaded file. It is consumed once and never stored.
type Artifact struct {
	Data     []byte
	MIMEType string
}

// Classify resolves a declared MIME type. Parameters such as charset are ignored.
func Classify(mimeType string) Kind {
	switch normalize(mimeType) {
	case "text/plain":
		return KindPlainText
	case "image/jpeg", "image/jpg", "image/png":
		return KindImage
	default:
		return KindUnsupported
	}
}

// DetectMIME picks a MIME type for a local file: by extension first, then by sniffing.
func DetectMIME(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return normalize(t)
	}
	return normalize(http.DetectContentType(data))
}

func normalize(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = mimeType
	}
	mt = strings.ToLower(strings.TrimSpace(mt))
	if mt == "image/jpg" {
		return "image/jpeg"
	}
	return mt
}

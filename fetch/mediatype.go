package fetch

import (
	"mime"
	"strings"
)

// mediaType normalizes a Content-Type header to its bare media type.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return mt
}

// isBinaryType reports media types the pipeline refuses outright: a
// reader-service fallback cannot usefully re-render binary data either,
// so these are non-recoverable.
func isBinaryType(contentType string) bool {
	mt := mediaType(contentType)
	for _, prefix := range []string{"image/", "audio/", "video/", "font/"} {
		if strings.HasPrefix(mt, prefix) {
			return true
		}
	}
	switch mt {
	case "application/octet-stream",
		"application/zip",
		"application/gzip",
		"application/x-gzip",
		"application/x-tar",
		"application/x-7z-compressed",
		"application/x-rar-compressed",
		"application/x-bzip2",
		"application/wasm",
		"application/vnd.ms-cab-compressed":
		return true
	}
	return false
}

// isHTMLType reports whether the body should go through readability
// extraction.
func isHTMLType(contentType string) bool {
	switch mediaType(contentType) {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// isPDFType reports PDF payloads, which get page-level text extraction
// instead of the binary rejection.
func isPDFType(contentType string) bool {
	return mediaType(contentType) == "application/pdf"
}

package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

var errMissingID = errors.New("missing id")

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// parseID читает ?id= как десятичное целое без мусора в конце
func parseID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		return 0, errMissingID
	}
	return strconv.ParseInt(raw, 10, 64)
}

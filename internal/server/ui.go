package server

import (
	_ "embed"
	"net/http"
)

//go:embed assets/index.html
var chatPage []byte

// ChatPageHandler serves the single-page chat UI that talks to /chat and
// polls /status/{id}.
func ChatPageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(chatPage)
}

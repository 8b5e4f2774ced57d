package handler

import "net/http"

// Banner is returned by the root endpoint.
const Banner = "YouTube Downloader API"

// RootResponse is the JSON response for GET /.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Root returns a handler that reports the API banner and build version.
func Root(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, RootResponse{Message: Banner, Version: version})
	}
}

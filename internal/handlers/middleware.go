package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// allowedStreamParams defines the whitelist of allowed query parameters for stream endpoints
var allowedStreamParams = map[string]bool{
	"datastar": true, // Datastar automatically sends this with client state
}

// allowedDatastarSignals defines all valid signal names that can appear in the datastar parameter
var allowedDatastarSignals = map[string]bool{
	// Action inputs
	"name":    true,
	"code":    true,
	"target":  true,
	"game":    true,
	"round":   true,
	"index":   true,
	"timeout": true,

	// Patched by the room stream
	"status":      true,
	"secondsLeft": true,
	"version":     true,
}

const (
	maxStreamQuery   = 10000 // 10KB
	maxDatastarState = 8192  // 8KB
)

// ValidateStreamRequest rejects stream requests carrying unexpected or
// oversized query state
func ValidateStreamRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.RawQuery) > maxStreamQuery {
			http.Error(w, "Query string too large", http.StatusRequestURITooLong)
			return
		}

		params, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			http.Error(w, "Invalid query parameters", http.StatusBadRequest)
			return
		}

		for key, values := range params {
			if !allowedStreamParams[key] {
				http.Error(w, "Invalid parameter", http.StatusBadRequest)
				return
			}

			switch key {
			case "datastar":
				if len(values) != 1 {
					http.Error(w, "Invalid datastar parameter", http.StatusBadRequest)
					return
				}
				if len(values[0]) > maxDatastarState {
					http.Error(w, "Datastar state too large", http.StatusBadRequest)
					return
				}
				if values[0] == "" {
					continue
				}

				var signals map[string]any
				if err := json.Unmarshal([]byte(values[0]), &signals); err != nil {
					http.Error(w, "Invalid datastar JSON", http.StatusBadRequest)
					return
				}
				for signalName := range signals {
					if !allowedDatastarSignals[signalName] {
						http.Error(w, "Invalid signal in datastar: "+signalName, http.StatusBadRequest)
						return
					}
				}
			}
		}

		next(w, r)
	}
}

package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Events
	r.HandleFunc("/events", deps.EventHandler.GetEvents).Methods("GET")
	r.HandleFunc("/events", deps.EventHandler.CreateEvent).Methods("POST")

	// iCalendar feed
	r.HandleFunc("/calendar.ics", deps.EventHandler.ExportCalendar).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
}

package event

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quhixcal/quhixcal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type EventHandler struct {
	eventService EventService
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{eventService}
}

// GetEvents lists all events. With both from and to query parameters it lists
// the occurrences of every event inside that date range instead.
func (e *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	fromString := r.URL.Query().Get("from")
	toString := r.URL.Query().Get("to")

	var events []Event
	var err error
	if fromString == "" && toString == "" {
		events, err = e.eventService.GetEvents(r.Context())
	} else {
		from, parseErr := ParseDate(fromString)
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in YYYY-MM-DD format")
			return
		}
		to, parseErr := ParseDate(toString)
		if parseErr != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in YYYY-MM-DD format")
			return
		}
		events, err = e.eventService.GetOccurrences(r.Context(), from, to)
		if errors.Is(err, ErrInvalidRange) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date range", "'to' must not be before 'from'")
			return
		}
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, EventToDTO(event))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Tracef("Events returned: %d", len(dtos))
}

func (e *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	log.Debug("New event request: ", eventDTO)

	stored, err := e.eventService.CreateEvent(r.Context(), DTOToEvent(eventDTO))
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid event", validationErr.Message)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(EventToDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (e *EventHandler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	calendar, err := e.eventService.ExportCalendar(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="quhixcal.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(calendar)); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}

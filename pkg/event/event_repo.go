package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quhixcal/quhixcal/internal/database"
	log "github.com/sirupsen/logrus"
)

type EventRepository interface {
	StoreEvent(ctx context.Context, event Event) (Event, error)
	// GetEvents returns every stored event ordered by date, then by creation time.
	GetEvents(ctx context.Context) ([]Event, error)
}

// DBInstance is the subset of *pgxpool.Pool the repository needs.
type DBInstance interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

type EventRepositoryImpl struct {
	db      DBInstance
	metrics *database.QueryMetrics
}

func NewEventRepo(db DBInstance) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db, metrics: database.NewQueryMetrics("postgresql")}
}

// StoreEvent stores a new Event and assigns its UID
func (r *EventRepositoryImpl) StoreEvent(ctx context.Context, event Event) (stored Event, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe(ctx, "store_event", start, err) }()

	date, err := ParseDate(event.Date)
	if err != nil {
		return Event{}, err
	}

	query := `INSERT INTO calendar_event (uid, title, event_date, recurrence, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	uid := uuid.New()
	_, err = r.db.Exec(ctx, query, uid.String(), event.Title, date, event.Recurrence.Marker(), event.CreatedAt)
	if err != nil {
		err = fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Event{}, err
	}

	event.ID = uid.String()
	return event, nil
}

func (r *EventRepositoryImpl) GetEvents(ctx context.Context) (events []Event, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe(ctx, "get_events", start, err) }()

	query := `SELECT uid, title, event_date, recurrence, created_at
			  FROM calendar_event
			  ORDER BY event_date, created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err = fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events = make([]Event, 0, 16)
	for rows.Next() {
		var uid string
		var title string
		var date time.Time
		var recurrence *string
		var createdAt time.Time
		if err = rows.Scan(&uid, &title, &date, &recurrence, &createdAt); err != nil {
			err = fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		e := DTOToEvent(EventDTO{ID: uid, Title: title, Date: FormatDate(date), Recurrence: recurrence})
		e.CreatedAt = createdAt
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("could not iterate calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

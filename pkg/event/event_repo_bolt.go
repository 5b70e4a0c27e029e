package event

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quhixcal/quhixcal/internal/database"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const bucketEvents = "calendar_event"

type boltRecord struct {
	UID        string    `json:"uid"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Recurrence *string   `json:"recurrence"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BoltEventRepository keeps events in a single bucket keyed by insertion sequence.
type BoltEventRepository struct {
	db      *bolt.DB
	metrics *database.QueryMetrics
}

func NewBoltEventRepo(db *bolt.DB) (*BoltEventRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEvents))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not initialize events bucket: %w", err)
	}
	return &BoltEventRepository{db: db, metrics: database.NewQueryMetrics("bbolt")}, nil
}

func (r *BoltEventRepository) StoreEvent(ctx context.Context, event Event) (stored Event, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe(ctx, "store_event", start, err) }()

	if _, err = ParseDate(event.Date); err != nil {
		return Event{}, err
	}

	uid := uuid.New().String()
	value, err := json.Marshal(boltRecord{
		UID:        uid,
		Title:      event.Title,
		Date:       event.Date,
		Recurrence: event.Recurrence.Marker(),
		CreatedAt:  event.CreatedAt,
	})
	if err != nil {
		return Event{}, fmt.Errorf("could not encode event: %w", err)
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), value)
	})
	if err != nil {
		err = fmt.Errorf("could not store event: %w", err)
		log.Error(err)
		return Event{}, err
	}

	event.ID = uid
	return event, nil
}

func (r *BoltEventRepository) GetEvents(ctx context.Context) (events []Event, err error) {
	start := time.Now()
	defer func() { r.metrics.Observe(ctx, "get_events", start, err) }()

	events = make([]Event, 0, 16)
	err = r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		return b.ForEach(func(k, v []byte) error {
			var record boltRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("could not decode event %d: %w", unmarshalSeq(k), err)
			}
			e := DTOToEvent(EventDTO{ID: record.UID, Title: record.Title, Date: record.Date, Recurrence: record.Recurrence})
			e.CreatedAt = record.CreatedAt
			events = append(events, e)
			return nil
		})
	})
	if err != nil {
		err = fmt.Errorf("could not read calendar events: %w", err)
		log.Error(err)
		return nil, err
	}

	// keys are in insertion order, so a stable sort keeps creation order within a date
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events, nil
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

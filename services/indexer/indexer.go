// Package indexer persists module events into a relational store so
// off-module services can query reward and auction history without replaying
// state.
package indexer

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"perpsafety/core/events"
	"perpsafety/core/types"
)

// EventRecord is one persisted module event. Attributes are stored as rows in
// AttributeRecord rather than a serialized blob so queries can filter on
// individual keys.
type EventRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type       string    `gorm:"index"`
	Sequence   uint64    `gorm:"index"`
	Attributes []AttributeRecord
	CreatedAt  time.Time
}

// AttributeRecord is one key/value attribute of a persisted event.
type AttributeRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventRecordID uuid.UUID `gorm:"type:uuid;index"`
	Key           string    `gorm:"index"`
	Value         string
}

// Indexer implements the emitter interface over a gorm-backed store.
type Indexer struct {
	db       *gorm.DB
	sequence uint64
}

// New migrates the schema and returns an indexer bound to the database.
func New(db *gorm.DB) (*Indexer, error) {
	if err := db.AutoMigrate(&EventRecord{}, &AttributeRecord{}); err != nil {
		return nil, err
	}
	return &Indexer{db: db}, nil
}

type carrier interface {
	Event() *types.Event
}

// Emit persists an event. Events without a payload carrier are skipped;
// persistence failures are swallowed so indexing never blocks engine
// execution.
func (i *Indexer) Emit(evt events.Event) {
	if i == nil || i.db == nil || evt == nil {
		return
	}
	payload, ok := evt.(carrier)
	if !ok {
		return
	}
	event := payload.Event()
	if event == nil {
		return
	}
	i.sequence++
	record := EventRecord{
		ID:       uuid.New(),
		Type:     event.Type,
		Sequence: i.sequence,
	}
	for key, value := range event.Attributes {
		record.Attributes = append(record.Attributes, AttributeRecord{
			ID:            uuid.New(),
			EventRecordID: record.ID,
			Key:           key,
			Value:         value,
		})
	}
	i.db.Create(&record)
}

// EventsByType returns persisted events of one type in emission order.
func (i *Indexer) EventsByType(eventType string) ([]EventRecord, error) {
	var records []EventRecord
	err := i.db.Preload("Attributes").
		Where("type = ?", eventType).
		Order("sequence asc").
		Find(&records).Error
	return records, err
}

// CountByType returns how many events of one type have been persisted.
func (i *Indexer) CountByType(eventType string) (int64, error) {
	var count int64
	err := i.db.Model(&EventRecord{}).Where("type = ?", eventType).Count(&count).Error
	return count, err
}

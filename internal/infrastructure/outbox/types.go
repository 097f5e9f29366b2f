package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Item represents a mail waiting to be delivered.
type Item struct {
	ID       string    `json:"id"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	Retries  int       `json:"retries"`
	QueuedAt time.Time `json:"queued_at"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.QueuedAt.IsZero() {
		i.QueuedAt = time.Now()
	}
}

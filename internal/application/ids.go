package application

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	sequenceIDPrefix  = "seq_"
	queueItemIDPrefix = "task_"
)

func NewSequenceID() string {
	return sequenceIDPrefix + ulid.Make().String()
}

func NewQueueItemID() string {
	return queueItemIDPrefix + ulid.Make().String()
}

func NewRequestID() string {
	return uuid.NewString()
}

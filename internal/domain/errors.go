package domain

import "errors"

var (
	ErrEmptyPath         = errors.New("path is empty")
	ErrEmptyTaskList     = errors.New("task list is empty")
	ErrPathConflict      = errors.New("path conflict")
	ErrRevisionConflict  = errors.New("document revision conflict")
	ErrSequenceNotFound  = errors.New("sequence not found")
	ErrQueueItemNotFound = errors.New("queue item not found")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidAction     = errors.New("invalid action arguments")
	ErrResponseTimeout   = errors.New("timed out waiting for backend response")
	ErrBackendPartition  = errors.New("backend memory is not writable from the frontend")
)

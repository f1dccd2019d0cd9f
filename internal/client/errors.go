package client

import "fmt"

// ProductionError tags failures from the speech or video model services.
// The worker persists Message as the generation's user-visible error and
// keeps internal detail out of the record.
type ProductionError struct {
	Stage   string // "synthesis" or "video"
	Message string
	Err     error
}

func (e *ProductionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *ProductionError) Unwrap() error { return e.Err }

// StorageError tags failures from the object store.
type StorageError struct {
	Op      string // "upload" or "delete"
	Key     string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage %s %s: %s: %v", e.Op, e.Key, e.Message, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %s", e.Op, e.Key, e.Message)
}

func (e *StorageError) Unwrap() error { return e.Err }

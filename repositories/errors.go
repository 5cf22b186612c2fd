package repositories

import "fmt"

// NotFoundError reports a missing row. Match it with
// errors.Is(err, &repositories.NotFoundError{}).
type NotFoundError struct {
	Entity string
	Key    string
}

func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}

	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

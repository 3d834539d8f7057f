package services

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorInvalid         ErrorCode = "invalid"
	ErrorConflict        ErrorCode = "conflict"
	ErrorUnauthorized    ErrorCode = "unauthorized"
	ErrorNotFound        ErrorCode = "not_found"
	ErrorPersistence     ErrorCode = "persistence"
	ErrorTooManyRequests ErrorCode = "too_many_requests"
)

// ServiceError mang mã lỗi và key thông điệp cho client; Err là nguyên nhân nội bộ, chỉ dùng để log.
type ServiceError struct {
	Code ErrorCode
	Key  string
	Err  error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Key)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewInvalidError(key string) error      { return &ServiceError{Code: ErrorInvalid, Key: key} }
func NewConflictError(key string) error     { return &ServiceError{Code: ErrorConflict, Key: key} }
func NewUnauthorizedError(key string) error { return &ServiceError{Code: ErrorUnauthorized, Key: key} }
func NewNotFoundError(key string) error     { return &ServiceError{Code: ErrorNotFound, Key: key} }

// NewPersistenceError bọc lỗi storage; client chỉ nhận thông điệp chung.
func NewPersistenceError(key string, err error) error {
	return &ServiceError{Code: ErrorPersistence, Key: key, Err: err}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

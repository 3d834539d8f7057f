package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound được trả về khi bản ghi không tồn tại (hoặc không thuộc về người yêu cầu).
var ErrNotFound = errors.New("record not found")

// notFound chuyển gorm.ErrRecordNotFound sang ErrNotFound, các lỗi khác giữ nguyên.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

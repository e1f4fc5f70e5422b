// errors.go - ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound - запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrFileTooLarge - размер файла превышает допустимый.
	ErrFileTooLarge = errors.New("размер файла превышает допустимый")
)

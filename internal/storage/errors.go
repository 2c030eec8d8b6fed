// Package storage содержит ошибки слоя хранения, общие для репозиториев.
package storage

import "errors"

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists нарушено ограничение уникальности.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrForeignKey ссылка на несуществующую запись.
	ErrForeignKey = errors.New("referenced record does not exist")
	// ErrInsufficientFunds баланса недостаточно для списания.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrOutOfRange значение не помещается в тип столбца.
	ErrOutOfRange = errors.New("value out of range")
	// ErrStateChanged состояние записи изменилось конкурентно, условное обновление не применилось.
	ErrStateChanged = errors.New("record state changed")
)

package dataset

import "errors"

// Ошибки жизненного цикла dataset'а.
var (
	// ErrInvalidState — операция несовместима с текущим состоянием
	// dataset'а (например, attach к CLOSED). Проверяется локально,
	// до обращения к каталогу.
	ErrInvalidState = errors.New("invalid dataset state")

	// ErrExists — dataset с таким (scope, name) уже есть, а adopt
	// не запрошен или невозможен.
	ErrExists = errors.New("dataset already exists")
)

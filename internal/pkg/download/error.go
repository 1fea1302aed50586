package download

import "errors"

var (
	// ErrIndexOutOfRange is returned when the selected group does not exist
	ErrIndexOutOfRange = errors.New("selected index is out of range")
)

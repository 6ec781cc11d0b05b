package wire

import "errors"

var (
	ErrShortBuffer    = errors.New("wire: short buffer")
	ErrInvalidBool    = errors.New("wire: invalid bool byte")
	ErrInvalidVariant = errors.New("wire: invalid variant")
	ErrLengthTooLarge = errors.New("wire: length prefix too large")
)

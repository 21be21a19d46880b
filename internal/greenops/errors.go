package greenops

type constError string

func (e constError) Error() string { return string(e) }

const (
	ErrInvalidUnit   constError = "invalid carbon unit"
	ErrNegativeValue constError = "negative carbon value"
	ErrOverflow      constError = "carbon value out of range"
)

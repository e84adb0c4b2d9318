package clock

import "time"

var _ Clock = (*Real)(nil)
var _ Clock = (*Fixed)(nil)

// Clock abstracts current time so due-date and overdue checks stay
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock in UTC.
type Real struct{}

func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant. Test helper.
type Fixed struct {
	At time.Time
}

func NewFixed(at time.Time) *Fixed {
	return &Fixed{At: at}
}

func (c *Fixed) Now() time.Time {
	return c.At
}

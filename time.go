package cave

import (
	"encoding/json"
	"math"
	"time"

	"github.com/cavelabs/cave/errors"
)

// UnixTime represents a point in time as POSIX time with seconds precision.
//
// All timelock arithmetic is done on this type. Use AddSeconds when the
// operands come from user input, as it reports an overflow instead of
// wrapping around.
type UnixTime int64

// NeverTime is the smallest representable time. It is used as a sentinel
// meaning "not set" where zero is a valid value.
const NeverTime UnixTime = math.MinInt64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// IsZero returns true if this time represents a zero value.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add modifies this UNIX time by given duration. This is compatible with
// time.Time.Add method.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AddSeconds returns this time moved forward by the given number of
// seconds. ErrOverflow is returned if the result cannot be represented.
func (t UnixTime) AddSeconds(seconds int64) (UnixTime, error) {
	if seconds > 0 && int64(t) > math.MaxInt64-seconds {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", t, seconds)
	}
	if seconds < 0 && int64(t) < math.MinInt64-seconds {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", t, seconds)
	}
	return t + UnixTime(seconds), nil
}

// AsUnixTime converts given Time structure into its UNIX time representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the
// time.Time structure would.
func (t UnixTime) String() string {
	if t == NeverTime {
		return "never"
	}
	return t.Time().UTC().String()
}

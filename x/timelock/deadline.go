package timelock

import (
	"github.com/cavelabs/cave"
	"github.com/cavelabs/cave/errors"
)

// MaxLockDuration is the longest lock a vault accepts, one week.
const MaxLockDuration uint32 = 7 * 24 * 60 * 60

// ValidateDuration fails with ErrDurationExceedsMaximum for locks longer
// than MaxLockDuration.
func ValidateDuration(seconds uint32) error {
	if seconds > MaxLockDuration {
		return errors.Wrapf(ErrDurationExceedsMaximum, "%d > %d seconds", seconds, MaxLockDuration)
	}
	return nil
}

// Deadline returns the last second at which a lock started at start is
// still active. ErrOverflow is returned if it cannot be represented.
func Deadline(start cave.UnixTime, seconds uint32) (cave.UnixTime, error) {
	if start == cave.NeverTime {
		return 0, errors.Wrap(errors.ErrState, "lock was never started")
	}
	return start.AddSeconds(int64(seconds))
}

// CheckPassed fails with ErrLockIsActive unless now is strictly after the
// deadline of a lock started at start.
func CheckPassed(now, start cave.UnixTime, seconds uint32) error {
	deadline, err := Deadline(start, seconds)
	if err != nil {
		return err
	}
	if now <= deadline {
		return errors.Wrapf(ErrLockIsActive, "locked until %s", deadline)
	}
	return nil
}

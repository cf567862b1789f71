package timelock

import (
	"github.com/cavelabs/cave/errors"
)

var (
	ErrDidNotRequestUnlock         = errors.Register(1001, "unlock not requested")
	ErrUnlockAlreadyActive         = errors.Register(1002, "unlock already requested")
	ErrLockIsActive                = errors.Register(1003, "lock is active")
	ErrDurationExceedsMaximum      = errors.Register(1004, "duration exceeds maximum")
	ErrIncorrectBackupTokenAccount = errors.Register(1005, "incorrect backup token account")
)

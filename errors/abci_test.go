package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestABCIInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"nil error": {
			err:      nil,
			wantCode: SuccessABCICode,
			wantLog:  "",
		},
		"registered error": {
			err:      Wrap(ErrNotFound, "vault"),
			wantCode: ErrNotFound.ABCICode(),
			wantLog:  "vault: not found",
		},
		"stdlib error is redacted": {
			err:      fmt.Errorf("database password is 123"),
			wantCode: internalABCICode,
			wantLog:  internalABCILog,
		},
		"panic is redacted": {
			err:      Wrap(ErrPanic, "nil pointer"),
			wantCode: ErrPanic.ABCICode(),
			wantLog:  internalABCILog,
		},
		"stdlib error in debug mode": {
			err:      fmt.Errorf("database down"),
			debug:    true,
			wantCode: internalABCICode,
			wantLog:  "database down",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantLog, log)
		})
	}
}

func TestRedact(t *testing.T) {
	internal := fmt.Errorf("secret")
	assert.Equal(t, internalABCILog, Redact(internal, false).Error())
	assert.Equal(t, internal, Redact(internal, true))

	coded := Wrap(ErrUnauthorized, "signer")
	assert.Equal(t, coded, Redact(coded, false))
	assert.Equal(t, internalABCILog, Redact(Wrap(ErrPanic, "x"), false).Error())
}

package cave

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/cavelabs/cave/errors"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2019-04-04T11:35:40.89181085+02:00"`,
			wantTime: 1554370540,
		},
		"a time as number": {
			raw:      "1554370540",
			wantTime: 1554370540,
		},
		"negative number": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"invalid string": {
			raw:     `"not a time string"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour + 4*time.Second)

	ufuture := AsUnixTime(now).Add(time.Hour + 4*time.Second)
	if future.Unix() != int64(ufuture) {
		t.Fatalf("want %d, got %d", future.Unix(), ufuture)
	}
}

func TestUnixTimeAddSeconds(t *testing.T) {
	cases := map[string]struct {
		t       UnixTime
		seconds int64
		want    UnixTime
		wantErr *errors.Error
	}{
		"regular addition": {
			t:       1000,
			seconds: 10,
			want:    1010,
		},
		"subtraction": {
			t:       1000,
			seconds: -10,
			want:    990,
		},
		"max value": {
			t:       math.MaxInt64 - 5,
			seconds: 5,
			want:    math.MaxInt64,
		},
		"overflow": {
			t:       math.MaxInt64 - 5,
			seconds: 6,
			wantErr: errors.ErrOverflow,
		},
		"underflow": {
			t:       NeverTime,
			seconds: -1,
			wantErr: errors.ErrOverflow,
		},
		"sentinel plus duration": {
			t:       NeverTime,
			seconds: 604800,
			want:    NeverTime + 604800,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.t.AddSeconds(tc.seconds)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil && got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

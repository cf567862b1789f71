package coin

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/errors"
)

// Coins is a set of coins of different currencies, sorted by ticker and
// without zero entries.
type Coins []*Coin

// CombineCoins creates a normalized set from any number of coins.
func CombineCoins(cs ...Coin) (Coins, error) {
	var res Coins
	for _, c := range cs {
		var err error
		if res, err = res.Add(c); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Clone returns an independent copy.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add returns a new set with the coin added. The receiver is not modified.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.Clone(), nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	res := cs.Clone()
	i := res.search(c.Ticker)
	if i < len(res) && res[i].Ticker == c.Ticker {
		sum, err := res[i].Add(c)
		if err != nil {
			return nil, err
		}
		res[i] = &sum
		return res, nil
	}
	res = append(res, nil)
	copy(res[i+1:], res[i:])
	res[i] = c.Clone()
	return res, nil
}

// Subtract returns a new set with the coin removed. It fails with
// ErrInsufficientAmount if the set does not hold enough.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs.Clone(), nil
	}
	res := cs.Clone()
	i := res.search(c.Ticker)
	if i == len(res) || res[i].Ticker != c.Ticker {
		return nil, errors.Wrapf(errors.ErrInsufficientAmount, "no %s", c.Ticker)
	}
	diff, err := res[i].Subtract(c)
	if err != nil {
		return nil, err
	}
	if diff.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i] = &diff
	return res, nil
}

// Balance returns the amount held in the given currency.
func (cs Coins) Balance(ticker string) Coin {
	i := cs.search(ticker)
	if i < len(cs) && cs[i].Ticker == ticker {
		return *cs[i]
	}
	return Coin{Ticker: ticker}
}

// Contains returns true if the set holds at least the given amount.
func (cs Coins) Contains(c Coin) bool {
	return cs.Balance(c.Ticker).Amount >= c.Amount
}

// IsEmpty returns true if there is no value held.
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// Equals returns true if both sets hold the same amounts.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires a sorted set of valid, non zero, unique coins.
func (cs Coins) Validate() error {
	for i, c := range cs {
		if c == nil {
			return errors.Field(fieldIndex(i), errors.ErrEmpty, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return errors.Field(fieldIndex(i), err, "")
		}
		if c.IsZero() {
			return errors.Field(fieldIndex(i), errors.ErrAmount, "zero coin")
		}
		if i > 0 && cs[i-1].Ticker >= c.Ticker {
			return errors.Field(fieldIndex(i), errors.ErrState, "not sorted or duplicated")
		}
	}
	return nil
}

// String lists all coins separated by a semicolon.
func (cs Coins) String() string {
	if len(cs) == 0 {
		return "(none)"
	}
	s := make([]string, len(cs))
	for i, c := range cs {
		s[i] = c.String()
	}
	return strings.Join(s, "; ")
}

func (cs Coins) search(ticker string) int {
	return sort.Search(len(cs), func(i int) bool { return cs[i].Ticker >= ticker })
}

func fieldIndex(i int) string {
	return "Coins." + strconv.Itoa(i)
}

// Marshal serializes the set as a repeated coin field.
func (cs Coins) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	for _, c := range cs {
		if err := e.Message(1, c); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

// Unmarshal replaces the set with the serialized content.
func (cs *Coins) Unmarshal(raw []byte) error {
	*cs = nil
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			var c Coin
			d.Message(&c)
			*cs = append(*cs, &c)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

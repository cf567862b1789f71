package orm

import (
	"bytes"

	"github.com/cavelabs/cave/codec"
	"github.com/cavelabs/cave/errors"
)

// Marshal serializes the references in order.
func (m *MultiRef) Marshal() ([]byte, error) {
	e := codec.NewEncoder()
	for _, ref := range m.Refs {
		e.Bytes(1, ref)
	}
	return e.Result(), nil
}

// Unmarshal replaces the content with the serialized references.
func (m *MultiRef) Unmarshal(raw []byte) error {
	m.Refs = nil
	d := codec.NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Refs = append(m.Refs, d.Bytes())
		default:
			d.Skip()
		}
	}
	return d.Err()
}

// Add inserts the reference, keeping the set sorted. Adding an existing
// reference fails.
func (m *MultiRef) Add(ref []byte) error {
	i, found := m.find(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "reference already present")
	}
	m.Refs = append(m.Refs, nil)
	copy(m.Refs[i+1:], m.Refs[i:])
	m.Refs[i] = ref
	return nil
}

// Remove deletes the reference. Removing a missing reference fails.
func (m *MultiRef) Remove(ref []byte) error {
	i, found := m.find(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "reference not present")
	}
	m.Refs = append(m.Refs[:i], m.Refs[i+1:]...)
	return nil
}

func (m *MultiRef) find(ref []byte) (int, bool) {
	for i, r := range m.Refs {
		switch cmp := bytes.Compare(r, ref); {
		case cmp == 0:
			return i, true
		case cmp > 0:
			return i, false
		}
	}
	return len(m.Refs), false
}

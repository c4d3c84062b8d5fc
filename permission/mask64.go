package permission

import "math/bits"

// Mask64 is a set of up to 64 role bits.
type Mask64 uint64

func (m Mask64) Has(bit int) bool {
	if bit < 0 || bit >= 64 {
		return false
	}
	return (m & (1 << bit)) != 0
}

func (m *Mask64) Set(bit int) {
	if bit < 0 || bit >= 64 {
		return
	}
	*m |= (1 << bit)
}

func (m *Mask64) Clear(bit int) {
	if bit < 0 || bit >= 64 {
		return
	}
	*m &^= (1 << bit)
}

func (m Mask64) Raw() uint64 {
	return uint64(m)
}

// Intersects reports whether m and other share at least one bit.
func (m Mask64) Intersects(other Mask64) bool {
	return m&other != 0
}

func (m Mask64) IsZero() bool {
	return m == 0
}

// Len returns the number of set bits.
func (m Mask64) Len() int {
	return bits.OnesCount64(uint64(m))
}

package synthetic

// fallbackSeed replaces a zero seed; xorshift with a zero state only ever
// produces zeros.
const fallbackSeed uint32 = 2463534242

// Xorshift32 is Marsaglia's 32-bit xorshift generator with the 13/17/5 triple.
type Xorshift32 struct {
	state uint32
}

func NewXorshift32(seed uint32) *Xorshift32 {
	if seed == 0 {
		seed = fallbackSeed
	}
	return &Xorshift32{state: seed}
}

// Next advances the state and returns it masked to 31 bits.
func (x *Xorshift32) Next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s & 0x7FFFFFFF
}

// Intn returns Next() % n.
func (x *Xorshift32) Intn(n int) int {
	return int(x.Next() % uint32(n))
}

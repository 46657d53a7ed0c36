package scope

const (
	leadChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	nextChars = leadChars + "0123456789"
)

// SymbolAllocator generates the shortest free identifiers. Candidates are
// ordered by length, then by alphabet position, and are skipped while
// claimed. Reserved names are claimed permanently; scope claims are
// reference counted and released in reverse order by the renderer.
type SymbolAllocator struct {
	reserved map[string]bool
	claims   map[string]int
	next     int
}

// NewSymbolAllocator creates an allocator with nothing claimed.
func NewSymbolAllocator() *SymbolAllocator {
	return &SymbolAllocator{
		reserved: make(map[string]bool),
		claims:   make(map[string]int),
	}
}

// ClaimSymbol reserves name for the whole run. It is idempotent and does not
// consume the candidate sequence.
func (a *SymbolAllocator) ClaimSymbol(name string) {
	a.reserved[name] = true
}

// Claim takes one reference on name.
func (a *SymbolAllocator) Claim(name string) {
	a.claims[name]++
}

// Release drops one reference taken by Claim or NextSymbol.
func (a *SymbolAllocator) Release(name string) {
	switch n := a.claims[name]; {
	case n > 1:
		a.claims[name] = n - 1
	case n == 1:
		delete(a.claims, name)
	}
}

// IsClaimed reports whether name is reserved or currently claimed.
func (a *SymbolAllocator) IsClaimed(name string) bool {
	return a.reserved[name] || a.claims[name] > 0
}

// Claims returns the number of live references on name, ignoring
// permanent reservations.
func (a *SymbolAllocator) Claims(name string) int {
	return a.claims[name]
}

// IsReserved reports whether name was claimed with ClaimSymbol.
func (a *SymbolAllocator) IsReserved(name string) bool {
	return a.reserved[name]
}

// Peek returns the next free candidate without claiming it.
func (a *SymbolAllocator) Peek() string {
	i := a.next
	for {
		name := CandidateName(i)
		if !a.IsClaimed(name) {
			return name
		}
		i++
	}
}

// NextSymbol returns the next free candidate and claims it.
func (a *SymbolAllocator) NextSymbol() string {
	for {
		name := CandidateName(a.next)
		a.next++
		if !a.IsClaimed(name) {
			a.Claim(name)
			return name
		}
	}
}

// Checkpoint returns the position of the candidate cursor.
func (a *SymbolAllocator) Checkpoint() int {
	return a.next
}

// Rewind moves the candidate cursor back to a checkpoint.
func (a *SymbolAllocator) Rewind(cp int) {
	a.next = cp
}

// CandidateName maps a candidate index to its identifier. The mapping is a
// bijection onto identifiers made of [a-zA-Z_][a-zA-Z_0-9]*, shortest first.
func CandidateName(i int) string {
	size := len(leadChars)
	length := 1
	for i >= size {
		i -= size
		size *= len(nextChars)
		length++
	}
	buf := make([]byte, length)
	for p := length - 1; p > 0; p-- {
		buf[p] = nextChars[i%len(nextChars)]
		i /= len(nextChars)
	}
	buf[0] = leadChars[i]
	return string(buf)
}

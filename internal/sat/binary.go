package sat

// binaryLink connects a literal to the other literal of a binary clause.
// Keeping the other literal in the link avoids dereferencing the clause
// during the binary propagation pass.
type binaryLink struct {
	other  Literal
	clause *Clause
}

type binaryPair struct {
	lo, hi Literal
}

func pairOf(a, b Literal) binaryPair {
	if b < a {
		a, b = b, a
	}
	return binaryPair{lo: a, hi: b}
}

// binaryLinks indexes binary clauses by either literal for the dedicated
// two-literal propagation pass. The list of literal l holds the binary
// clauses that become unit (or conflicting) when l is assigned true, i.e.
// the clauses containing !l. A pair map guards against duplicate binary
// clauses.
type binaryLinks struct {
	links [][]binaryLink
	pairs map[binaryPair]*Clause
}

func newBinaryLinks() *binaryLinks {
	return &binaryLinks{
		pairs: map[binaryPair]*Clause{},
	}
}

// expand adds room for one more variable (two literals).
func (b *binaryLinks) expand() {
	b.links = append(b.links, nil)
	b.links = append(b.links, nil)
}

// add registers binary clause c. The clause must have exactly two literals
// and no registered duplicate.
func (b *binaryLinks) add(c *Clause) {
	l0, l1 := c.literals[0], c.literals[1]
	b.pairs[pairOf(l0, l1)] = c
	b.links[l0.Opposite()] = append(b.links[l0.Opposite()], binaryLink{other: l1, clause: c})
	b.links[l1.Opposite()] = append(b.links[l1.Opposite()], binaryLink{other: l0, clause: c})
}

// lookup returns the registered binary clause over the two given literals,
// or nil if there is none.
func (b *binaryLinks) lookup(l0, l1 Literal) *Clause {
	return b.pairs[pairOf(l0, l1)]
}

// remove unregisters binary clause c.
func (b *binaryLinks) remove(c *Clause) {
	l0, l1 := c.literals[0], c.literals[1]
	delete(b.pairs, pairOf(l0, l1))
	b.unlink(l0.Opposite(), c)
	b.unlink(l1.Opposite(), c)
}

func (b *binaryLinks) unlink(key Literal, c *Clause) {
	links := b.links[key]
	j := 0
	for i := 0; i < len(links); i++ {
		if links[i].clause != c {
			links[j] = links[i]
			j++
		}
	}
	b.links[key] = links[:j]
}

// connectedTo returns the links triggered when lit is assigned true.
func (b *binaryLinks) connectedTo(lit Literal) []binaryLink {
	return b.links[lit]
}

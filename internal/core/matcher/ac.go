package matcher

// automaton is a byte-level Aho-Corasick machine compiled to a full DFA:
// after build every state has a transition for every byte, so scanning is a
// single table lookup per input byte. Matches are plain substrings with no
// word-boundary check

type acState struct {
	next [256]int32
	fail int32
	out  []int // pattern ids ending here, including via fail links
}

type automaton struct {
	states []acState
}

func newAutomaton() *automaton {
	a := &automaton{}
	a.addState()
	return a
}

func (a *automaton) addState() int32 {
	var s acState
	for i := range s.next {
		s.next[i] = -1
	}
	a.states = append(a.states, s)
	return int32(len(a.states) - 1)
}

// add inserts pat under id. Empty patterns are ignored
func (a *automaton) add(pat string, id int) {
	if pat == "" {
		return
	}
	cur := int32(0)
	for i := 0; i < len(pat); i++ {
		b := pat[i]
		nxt := a.states[cur].next[b]
		if nxt == -1 {
			nxt = a.addState()
			a.states[cur].next[b] = nxt
		}
		cur = nxt
	}
	a.states[cur].out = append(a.states[cur].out, id)
}

// build computes fail links breadth first and fills every missing
// transition with the fail target's transition
func (a *automaton) build() {
	queue := make([]int32, 0, len(a.states))
	root := &a.states[0]
	for b := 0; b < 256; b++ {
		if s := root.next[b]; s == -1 {
			root.next[b] = 0
		} else {
			a.states[s].fail = 0
			queue = append(queue, s)
		}
	}
	for qi := 0; qi < len(queue); qi++ {
		r := queue[qi]
		for b := 0; b < 256; b++ {
			s := a.states[r].next[b]
			if s == -1 {
				a.states[r].next[b] = a.states[a.states[r].fail].next[b]
				continue
			}
			f := a.states[a.states[r].fail].next[b]
			a.states[s].fail = f
			a.states[s].out = append(a.states[s].out, a.states[f].out...)
			queue = append(queue, s)
		}
	}
}

// scan calls hit for every pattern occurrence in text, in end-position order.
// Returning false from hit stops the scan
func (a *automaton) scan(text string, hit func(id int) bool) {
	cur := int32(0)
	for i := 0; i < len(text); i++ {
		cur = a.states[cur].next[text[i]]
		for _, id := range a.states[cur].out {
			if !hit(id) {
				return
			}
		}
	}
}

/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package urlspace

type slot struct {
	data interface{}
	del  FuncDelete
}

func (s *slot) release(flags Op) {
	if s != nil && s.del != nil && flags&OpNoDelete == 0 {
		s.del(s.data)
	}
}

type node struct {
	inherit   *slot
	noinherit *slot
}

func (n *node) empty() bool {
	return n == nil || (n.inherit == nil && n.noinherit == nil)
}

type trie struct {
	branches map[string]*trie
	nodes    map[int]*node
}

func newTrie() *trie {
	return &trie{
		branches: make(map[string]*trie),
		nodes:    make(map[int]*node),
	}
}

func (t *trie) empty() bool {
	return len(t.branches) == 0 && len(t.nodes) == 0
}

type channel struct {
	filter string
	root   *trie
}

type junction struct {
	channels []*channel
}

// find returns the channel carrying the filter, or nil.
func (j *junction) find(filter string) *channel {
	for _, c := range j.channels {
		if c.filter == filter {
			return c
		}
	}

	return nil
}

// create returns the channel carrying the filter, making it if needed.
// Real filters keep their creation order but always precede the catch-all
// channel, so an exact filter match beats the catch-all on equal depth.
func (j *junction) create(filter string) *channel {
	if c := j.find(filter); c != nil {
		return c
	}

	c := &channel{filter: filter, root: newTrie()}

	if filter != catchAll {
		if n := len(j.channels); n > 0 && j.channels[n-1].filter == catchAll {
			j.channels = append(j.channels[:n-1], c, j.channels[n-1])
			return c
		}
	}

	j.channels = append(j.channels, c)
	return c
}

// drop removes the channel from the junction once its trie emptied.
func (j *junction) drop(c *channel) {
	for i, x := range j.channels {
		if x == c {
			j.channels = append(j.channels[:i], j.channels[i+1:]...)
			return
		}
	}
}

type space struct {
	juncs []*junction
}

func (o *space) AllocNamespace() int {
	o.juncs = append(o.juncs, &junction{})
	return len(o.juncs) - 1
}

func (o *space) junction(id int) *junction {
	if id < 0 || id >= len(o.juncs) {
		return nil
	}

	return o.juncs[id]
}

// split separates the insertion sequence from its channel filter.
func split(server, method, url string) (seq []string, filter string) {
	seq = MkSeq(server, method, url)
	filter = catchAll

	if hasFilter(seq) {
		filter = seq[len(seq)-1]
		seq = seq[:len(seq)-1]
	}

	return seq, filter
}

func (o *space) Add(id int, server, method, url string, data interface{}, del FuncDelete, flags Op) {
	j := o.junction(id)
	if j == nil {
		return
	}

	seq, filter := split(server, method, url)

	t := j.create(filter).root
	for _, tok := range seq {
		b := t.branches[tok]
		if b == nil {
			b = newTrie()
			t.branches[tok] = b
		}

		t = b
	}

	nd := t.nodes[id]
	if nd == nil {
		nd = &node{}
		t.nodes[id] = nd
	}

	tgt := &nd.inherit
	if flags&OpNoInherit != 0 {
		tgt = &nd.noinherit
	}

	(*tgt).release(flags)
	*tgt = &slot{data: data, del: del}
}

func (o *space) Get(id int, server, method, url string) interface{} {
	j := o.junction(id)
	if j == nil {
		return nil
	}

	var (
		seq  = MkSeq(server, method, url)
		last string

		best      *slot
		bestDepth = -1
	)

	if len(seq) > 2 {
		last = seq[len(seq)-1]
	}

	for _, ch := range j.channels {
		if !matchFilter(ch.filter, last) {
			continue
		}

		// a real filter consumed the last token already
		stop := len(seq)
		if ch.filter != catchAll {
			stop--
		}

		var (
			t        = ch.root
			inh      *slot
			inhDepth int
			term     *node
		)

		for depth := 0; t != nil; depth++ {
			if nd := t.nodes[id]; nd != nil {
				if nd.inherit != nil {
					inh = nd.inherit
					inhDepth = depth
				}

				if depth == stop {
					term = nd
				}
			}

			if depth == stop {
				break
			}

			t = t.branches[seq[depth]]
		}

		var (
			cand  *slot
			depth int
		)

		if term != nil && term.noinherit != nil {
			cand, depth = term.noinherit, stop
		} else if inh != nil {
			cand, depth = inh, inhDepth
		}

		if cand != nil && depth > bestDepth {
			best, bestDepth = cand, depth
		}
	}

	if best == nil {
		return nil
	}

	return best.data
}

func (o *space) GetExact(id int, server, method, url string, flags Op) interface{} {
	j := o.junction(id)
	if j == nil {
		return nil
	}

	seq, filter := split(server, method, url)

	ch := j.find(filter)
	if ch == nil {
		return nil
	}

	t := ch.root
	for _, tok := range seq {
		if t = t.branches[tok]; t == nil {
			return nil
		}
	}

	nd := t.nodes[id]
	if nd == nil {
		return nil
	}

	s := nd.inherit
	if flags&OpNoInherit != 0 {
		s = nd.noinherit
	}

	if s == nil {
		return nil
	}

	return s.data
}

func (o *space) Del(id int, server, method, url string, flags Op) interface{} {
	j := o.junction(id)
	if j == nil {
		return nil
	}

	seq, filter := split(server, method, url)

	ch := j.find(filter)
	if ch == nil {
		return nil
	}

	var rm *slot

	if flags&OpRecurse != 0 {
		truncate(ch.root, seq, 0, id, flags)
	} else {
		rm, _ = delWalk(ch.root, seq, 0, id, flags)
	}

	if ch.root.empty() {
		j.drop(ch)
	}

	if rm == nil {
		return nil
	}

	return rm.data
}

// delWalk removes the addressed slot and prunes emptied branches on the
// way back up. It reports whether the subtree emptied.
func delWalk(t *trie, seq []string, i, id int, flags Op) (*slot, bool) {
	if i == len(seq) {
		nd := t.nodes[id]
		if nd == nil {
			return nil, t.empty()
		}

		var rm *slot

		if flags&OpNoInherit != 0 {
			rm, nd.noinherit = nd.noinherit, nil
		} else {
			rm, nd.inherit = nd.inherit, nil
		}

		if nd.empty() {
			delete(t.nodes, id)
		}

		rm.release(flags)
		return rm, t.empty()
	}

	b := t.branches[seq[i]]
	if b == nil {
		return nil, t.empty()
	}

	rm, emp := delWalk(b, seq, i+1, id, flags)
	if emp {
		delete(t.branches, seq[i])
	}

	return rm, t.empty()
}

// truncate drops every payload the namespace holds under the sequence,
// releasing each one, then prunes what emptied.
func truncate(t *trie, seq []string, i, id int, flags Op) bool {
	if i == len(seq) {
		wipe(t, id, flags)
		return t.empty()
	}

	b := t.branches[seq[i]]
	if b == nil {
		return t.empty()
	}

	if truncate(b, seq, i+1, id, flags) {
		delete(t.branches, seq[i])
	}

	return t.empty()
}

func wipe(t *trie, id int, flags Op) {
	if nd := t.nodes[id]; nd != nil {
		nd.inherit.release(flags)
		nd.noinherit.release(flags)
		delete(t.nodes, id)
	}

	for tok, b := range t.branches {
		wipe(b, id, flags)

		if b.empty() {
			delete(t.branches, tok)
		}
	}
}

package memory

import (
	"math/rand/v2"

	"github.com/minisport/arena/internal/model"
)

// scoreTreap is an ordered index over player scores: score descending, then
// player ID ascending, so an in-order traversal yields the leaderboard from
// best to worst and every rank query is O(log n) expected.
type scoreTreap struct {
	root *treapNode
	byID map[model.PlayerID]int
}

type treapNode struct {
	id    model.PlayerID
	score int
	prio  uint64
	size  int
	left  *treapNode
	right *treapNode
}

func newScoreTreap() *scoreTreap {
	return &scoreTreap{byID: make(map[model.PlayerID]int)}
}

func nsize(n *treapNode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *treapNode) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// ranksBefore reports whether (aScore, aID) ranks ahead of (bScore, bID)
func ranksBefore(aScore int, aID model.PlayerID, bScore int, bID model.PlayerID) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *treapNode) *treapNode {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *treapNode) *treapNode {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insertNode(n *treapNode, id model.PlayerID, score int) *treapNode {
	if n == nil {
		return &treapNode{id: id, score: score, prio: rand.Uint64(), size: 1}
	}
	if ranksBefore(score, id, n.score, n.id) {
		n.left = insertNode(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insertNode(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func removeNode(n *treapNode, id model.PlayerID, score int) *treapNode {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = removeNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = removeNode(n.left, id, score)
		}
	} else if ranksBefore(score, id, n.score, n.id) {
		n.left = removeNode(n.left, id, score)
	} else {
		n.right = removeNode(n.right, id, score)
	}
	fix(n)
	return n
}

// set inserts or updates a player's score
func (t *scoreTreap) set(id model.PlayerID, score int) {
	if old, ok := t.byID[id]; ok {
		t.root = removeNode(t.root, id, old)
	}
	t.byID[id] = score
	t.root = insertNode(t.root, id, score)
}

// add increments a player's score and returns the new value
func (t *scoreTreap) add(id model.PlayerID, delta int) int {
	next := t.byID[id] + delta
	t.set(id, next)
	return next
}

// rank returns the 1-based rank for a player, walking down by subtree size
func (t *scoreTreap) rank(id model.PlayerID) (int, bool) {
	score, ok := t.byID[id]
	if !ok {
		return 0, false
	}
	rank := 1
	n := t.root
	for n != nil {
		switch {
		case n.id == id && n.score == score:
			return rank + nsize(n.left), true
		case ranksBefore(score, id, n.score, n.id):
			n = n.left
		default:
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0, false
}

// top collects the first n entries in rank order
func (t *scoreTreap) top(n int) []model.RankedScore {
	out := make([]model.RankedScore, 0, n)
	collectTop(t.root, n, &out)
	return out
}

func collectTop(n *treapNode, limit int, out *[]model.RankedScore) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTop(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, model.RankedScore{PlayerID: n.id, Score: n.score})
	}
	collectTop(n.right, limit, out)
}

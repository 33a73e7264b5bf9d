package repository

import (
	"math"
	"math/rand/v2"
)

// The leaderboard index is a treap ordered by best score DESC, then player
// ASC, so an in-order walk yields the leaderboard from best to worst.

// scoreScale fixes scores to six decimals so equal scores compare equal.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x >= math.MaxInt64/scoreScale:
		return scoreFP(math.MaxInt64)
	case x <= math.MinInt64/scoreScale:
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(x * scoreScale))
}

func (s scoreFP) float() float64 { return float64(s) / scoreScale }

type node struct {
	player string
	score  scoreFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// ranksBefore reports whether (aScore, a) sits above (bScore, b).
func ranksBefore(aScore scoreFP, a string, bScore scoreFP, b string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return a < b
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, player string, score scoreFP) *node {
	if n == nil {
		return &node{player: player, score: score, prio: rand.Uint64(), size: 1}
	}
	if ranksBefore(score, player, n.score, n.player) {
		n.left = insert(n.left, player, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, player, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, player string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && player == n.player:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, player, score)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, player, score)
		}
	case ranksBefore(score, player, n.score, n.player):
		n.left = remove(n.left, player, score)
	default:
		n.right = remove(n.right, player, score)
	}
	fix(n)
	return n
}

// position returns the zero-based in-order position of (player, score).
func position(n *node, player string, score scoreFP) int {
	pos := 0
	for n != nil {
		switch {
		case score == n.score && player == n.player:
			return pos + nsize(n.left)
		case ranksBefore(score, player, n.score, n.player):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// walk visits nodes in rank order until visit returns false.
func walk(n *node, visit func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, visit) {
		return false
	}
	if !visit(n) {
		return false
	}
	return walk(n.right, visit)
}

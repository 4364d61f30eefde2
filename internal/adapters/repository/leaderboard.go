package repository

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/rallyrank/rallyrank/internal/domain/model"
	"github.com/rallyrank/rallyrank/pkg/metrics"
)

// Treap-based leaderboard over final player summaries.
//
// Ordering: rating DESC, then playerID ASC (deterministic). The BST
// comparator's "less" means ranks earlier, so in-order traversal yields
// the board from best to worst. The treap is only built inside Rebuild;
// readers work off an immutable published snapshot.

// ratingScale controls fixed-point scaling from float64. Ratings live in
// a few-thousand range, so 12 decimal places fit comfortably in int64.
const ratingScale = 1_000_000_000_000

type ratingFP int64

func toFixedPoint(x float64) ratingFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * ratingScale
	if scaled > float64(math.MaxInt64) {
		return ratingFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return ratingFP(math.MinInt64)
	}
	return ratingFP(math.Round(scaled))
}

// treap node
type node struct {
	id     string
	rating ratingFP
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

// less reports whether (aRating, aID) ranks earlier than (bRating, bID).
func less(aRating ratingFP, aID string, bRating ratingFP, bID string) bool {
	if aRating != bRating {
		return aRating > bRating // higher rating ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// ratingToPriority keeps higher ratings nearer the treap root so TopN
// traversals touch few nodes. The offset shifts negative fixed-point
// values into unsigned range.
func ratingToPriority(r ratingFP) uint64 {
	const offset = uint64(1) << 63
	return uint64(r) + offset
}

func insert(n *node, id string, rating ratingFP) *node {
	if n == nil {
		return &node{id: id, rating: rating, prio: ratingToPriority(rating), size: 1}
	}
	if less(rating, id, n.rating, n.id) {
		n.left = insert(n.left, id, rating)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rating)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectInOrder appends entries in rank order (highest rating first).
func collectInOrder(n *node, byID map[string]model.Summary, out *[]Entry) {
	if n == nil {
		return
	}
	collectInOrder(n.left, byID, out)
	if s, ok := byID[n.id]; ok {
		*out = append(*out, Entry{
			PlayerID:      s.PlayerID,
			Name:          s.Name,
			Country:       s.Country,
			Rating:        s.Rating,
			Deviation:     s.Deviation,
			MatchesPlayed: s.MatchesPlayed,
			WinRate:       s.WinRate,
		})
	}
	collectInOrder(n.right, byID, out)
}

// assignRanksWithTies assigns ranks so players with the same rating get
// the same rank, and the next distinct rating takes the next rank.
func assignRanksWithTies(entries []Entry) {
	currentRank := 1
	for i := 0; i < len(entries); i++ {
		entries[i].Rank = currentRank

		sameCount := 1
		for j := i + 1; j < len(entries) && entries[j].Rating == entries[i].Rating; j++ {
			entries[j].Rank = currentRank
			sameCount++
		}

		currentRank++
		i += sameCount - 1
	}
}

// boardSnapshot is the immutable read state published by Rebuild.
type boardSnapshot struct {
	ordered  []Entry        // rank order, ranks assigned
	rankByID map[string]int // playerID -> index into ordered
}

// TreapBoard implements Leaderboard.
type TreapBoard struct {
	snapshot atomic.Pointer[boardSnapshot]
}

// NewTreapBoard constructs an empty leaderboard.
func NewTreapBoard() *TreapBoard {
	b := &TreapBoard{}
	b.snapshot.Store(&boardSnapshot{rankByID: map[string]int{}})
	return b
}

// Rebuild replaces the board contents with the given summaries.
func (b *TreapBoard) Rebuild(ctx context.Context, summaries []model.Summary) {
	start := time.Now()

	byID := make(map[string]model.Summary, len(summaries))
	var root *node
	for _, s := range summaries {
		if s.PlayerID == "" {
			continue
		}
		if _, dup := byID[s.PlayerID]; dup {
			continue // one row per player; first occurrence wins
		}
		byID[s.PlayerID] = s
		root = insert(root, s.PlayerID, toFixedPoint(s.Rating))
	}

	ordered := make([]Entry, 0, len(byID))
	collectInOrder(root, byID, &ordered)
	assignRanksWithTies(ordered)

	rankByID := make(map[string]int, len(ordered))
	for i, e := range ordered {
		rankByID[e.PlayerID] = i
	}

	b.snapshot.Store(&boardSnapshot{ordered: ordered, rankByID: rankByID})

	metrics.RecordLeaderboardRebuild()
	metrics.RecordLeaderboardRebuildDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateLeaderboardSize(len(ordered))
}

// Rank returns the current rank entry for a player in O(1).
func (b *TreapBoard) Rank(ctx context.Context, playerID string) (Entry, error) {
	snap := b.snapshot.Load()
	idx, ok := snap.rankByID[playerID]
	if !ok {
		return Entry{}, ErrUnknownPlayer
	}
	return snap.ordered[idx], nil
}

// TopN returns the top-N entries ordered by rating desc.
func (b *TreapBoard) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	snap := b.snapshot.Load()
	if n > len(snap.ordered) {
		n = len(snap.ordered)
	}
	out := make([]Entry, n)
	copy(out, snap.ordered[:n])
	return out, nil
}

// Count returns the number of players on the board.
func (b *TreapBoard) Count(ctx context.Context) int {
	return len(b.snapshot.Load().ordered)
}

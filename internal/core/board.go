package core

import "fabledesk/internal/model"

// rebalanceGap is the smallest usable distance between neighboring
// card positions. Midpoint insertion halves gaps; below this there is
// no room left to subdivide and the column gets rebalanced.
const (
	rebalanceGap int64 = 10
	cardPosStep  int64 = 1000
	firstCardPos int64 = 1000
)

// DropPlan is the position assignment for one drop.
type DropPlan struct {
	Position       int64
	NeedsRebalance bool
}

// PlanDrop computes the position for inserting a card at index into a
// column whose cards (excluding the dragged card) are given in
// position order. Midpoint between neighbors when possible; a
// provisional position plus a rebalance flag when the gap is too
// small; append with a large increment when there is no neighbor.
func PlanDrop(cards []model.Card, index int) DropPlan {
	if len(cards) == 0 {
		return DropPlan{Position: firstCardPos}
	}
	if index >= len(cards) {
		return DropPlan{Position: cards[len(cards)-1].Position + cardPosStep}
	}
	if index <= 0 {
		neighbor := cards[0].Position
		return DropPlan{
			Position:       neighbor / 2,
			NeedsRebalance: neighbor < rebalanceGap,
		}
	}
	prev := cards[index-1].Position
	next := cards[index].Position
	return DropPlan{
		Position:       (prev + next) / 2,
		NeedsRebalance: next-prev < rebalanceGap,
	}
}

// handleDropCard applies a finished drag: no-op when the card would
// land where it already is, otherwise an optimistic local move plus a
// queued MoveCard (and RebalanceColumn when the gap collapsed).
func handleDropCard(s *State, deps Deps, m DropCard) {
	card, fromColID, ok := s.findCard(m.CardID)
	if !ok {
		deps.logf("drop for unknown card %s", m.CardID)
		return
	}

	dest := make([]model.Card, 0, len(s.Board.Cards[m.ToColumnID]))
	for _, c := range s.Board.Cards[m.ToColumnID] {
		if c.ID != m.CardID {
			dest = append(dest, c)
		}
	}
	idx := m.Index
	if idx > len(dest) {
		idx = len(dest)
	}
	if idx < 0 {
		idx = 0
	}

	if fromColID == m.ToColumnID {
		current := indexOfCard(s.Board.Cards[fromColID], m.CardID)
		if current == idx {
			return
		}
	}

	plan := PlanDrop(dest, idx)

	// Optimistic local move so the board does not snap back while the
	// write queue catches up.
	if fromColID != m.ToColumnID {
		s.Board.Cards[fromColID] = filterCards(s.Board.Cards[fromColID], m.CardID)
	}
	card.ColumnID = m.ToColumnID
	card.Position = plan.Position
	inserted := make([]model.Card, 0, len(dest)+1)
	inserted = append(inserted, dest[:idx]...)
	inserted = append(inserted, card)
	inserted = append(inserted, dest[idx:]...)
	s.Board.Cards[m.ToColumnID] = inserted

	s.Queue = append(s.Queue, Command{
		Kind:     CmdMoveCard,
		TargetID: m.CardID,
		ColumnID: m.ToColumnID,
		BoardID:  s.ActiveBoardID,
		Position: plan.Position,
	})
	if plan.NeedsRebalance {
		s.Queue = append(s.Queue, Command{
			Kind:     CmdRebalanceColumn,
			ColumnID: m.ToColumnID,
			BoardID:  s.ActiveBoardID,
		})
	}
}

func indexOfCard(cards []model.Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func filterCards(cards []model.Card, dropID string) []model.Card {
	kept := cards[:0]
	for _, c := range cards {
		if c.ID != dropID {
			kept = append(kept, c)
		}
	}
	return kept
}

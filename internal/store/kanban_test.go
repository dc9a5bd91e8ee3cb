package store

import (
	"testing"

	"fabledesk/internal/model"
)

func TestCreateBoard_SeedsDefaultColumns(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	b, err := s.CreateBoard(ctx, "Saltglass Draft Plan", "kanban")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	data, err := s.GetBoardData(ctx, b.ID)
	if err != nil {
		t.Fatalf("get board data: %v", err)
	}
	if len(data.Columns) != len(defaultColumnNames) {
		t.Fatalf("columns = %+v", data.Columns)
	}
	for i, col := range data.Columns {
		if col.Name != defaultColumnNames[i] {
			t.Fatalf("column %d = %q, want %q", i, col.Name, defaultColumnNames[i])
		}
		if col.Position != int64(i+1)*1000 {
			t.Fatalf("column %q position = %d", col.Name, col.Position)
		}
		if len(data.Cards[col.ID]) != 0 {
			t.Fatalf("fresh column %q has cards", col.Name)
		}
	}
}

func TestMoveCard_AcrossColumns(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	b, _ := s.CreateBoard(ctx, "Plan", "")
	data, _ := s.GetBoardData(ctx, b.ID)
	todo, doing := data.Columns[1].ID, data.Columns[2].ID

	card, err := s.SaveCard(ctx, model.Card{ColumnID: todo, Title: "Outline act two"})
	if err != nil {
		t.Fatalf("save card: %v", err)
	}
	if card.Position != 1000 {
		t.Fatalf("first card position = %d", card.Position)
	}

	if err := s.MoveCard(ctx, card.ID, doing, 500); err != nil {
		t.Fatalf("move card: %v", err)
	}

	data, _ = s.GetBoardData(ctx, b.ID)
	if len(data.Cards[todo]) != 0 {
		t.Fatalf("card still in source column")
	}
	moved := data.Cards[doing]
	if len(moved) != 1 || moved[0].ColumnID != doing || moved[0].Position != 500 {
		t.Fatalf("moved card = %+v", moved)
	}
}

func TestRebalanceColumn_EvenSpacingKeepsOrder(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	b, _ := s.CreateBoard(ctx, "Plan", "")
	data, _ := s.GetBoardData(ctx, b.ID)
	col := data.Columns[0].ID

	// Midpoint insertion collapsed the gaps.
	for _, c := range []model.Card{
		{ColumnID: col, Title: "first", Position: 3},
		{ColumnID: col, Title: "second", Position: 5},
		{ColumnID: col, Title: "third", Position: 6},
	} {
		if _, err := s.SaveCard(ctx, c); err != nil {
			t.Fatalf("save %q: %v", c.Title, err)
		}
	}

	if err := s.RebalanceColumn(ctx, col); err != nil {
		t.Fatalf("rebalance: %v", err)
	}

	data, _ = s.GetBoardData(ctx, b.ID)
	cards := data.Cards[col]
	wantTitles := []string{"first", "second", "third"}
	for i, c := range cards {
		if c.Title != wantTitles[i] {
			t.Fatalf("order changed at %d: %+v", i, cards)
		}
		if c.Position != int64(i+1)*1000 {
			t.Fatalf("card %q position = %d", c.Title, c.Position)
		}
	}
}

func TestDeleteCard_RemovesRow(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	b, _ := s.CreateBoard(ctx, "Plan", "")
	data, _ := s.GetBoardData(ctx, b.ID)
	col := data.Columns[0].ID

	card, _ := s.SaveCard(ctx, model.Card{ColumnID: col, Title: "stray"})
	if err := s.DeleteCard(ctx, card.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	data, _ = s.GetBoardData(ctx, b.ID)
	if len(data.Cards[col]) != 0 {
		t.Fatalf("card survived delete: %+v", data.Cards[col])
	}
}

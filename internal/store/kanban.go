package store

import (
	"context"
	"database/sql"
	"strings"

	"fabledesk/internal/model"
)

var defaultColumnNames = []string{"On Hold", "To Do", "In Progress", "Done"}

func (s *Store) ListBoards(ctx context.Context) ([]model.Board, error) {
	return readJSONRows[model.Board](ctx, s.db,
		`SELECT json FROM boards ORDER BY name, id`)
}

// CreateBoard also creates the default column set at evenly spaced
// positions so drops into a fresh board have room to subdivide.
func (s *Store) CreateBoard(ctx context.Context, name, kind string) (model.Board, error) {
	if err := s.requireCapability(ctx, CapBoards); err != nil {
		return model.Board{}, err
	}
	if strings.TrimSpace(name) == "" {
		return model.Board{}, &ValidationError{Field: "name"}
	}
	b := model.Board{ID: s.newID(), Name: name, Kind: kind}
	now := s.now().UnixMilli()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO boards (id, name, json, updated_at_unixms) VALUES (?, ?, ?, ?)`,
			b.ID, b.Name, mustJSON(b), now); err != nil {
			return err
		}
		for i, colName := range defaultColumnNames {
			col := model.BoardColumn{
				ID:       s.newID(),
				BoardID:  b.ID,
				Name:     colName,
				Position: int64(i+1) * 1000,
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO board_columns (id, board_id, position, json, updated_at_unixms)
				 VALUES (?, ?, ?, ?, ?)`,
				col.ID, col.BoardID, col.Position, mustJSON(col), now); err != nil {
				return err
			}
		}
		return nil
	})
	return b, err
}

// GetBoardData returns the board with its columns in position order and
// each column's cards in position order.
func (s *Store) GetBoardData(ctx context.Context, boardID string) (model.BoardData, error) {
	board, err := readJSONRow[model.Board](ctx, s.db, "board", boardID,
		`SELECT json FROM boards WHERE id = ?`, boardID)
	if err != nil {
		return model.BoardData{}, err
	}
	columns, err := readJSONRows[model.BoardColumn](ctx, s.db,
		`SELECT json FROM board_columns WHERE board_id = ? ORDER BY position, id`, boardID)
	if err != nil {
		return model.BoardData{}, err
	}
	data := model.BoardData{Board: board, Columns: columns, Cards: map[string][]model.Card{}}
	for _, col := range columns {
		cards, err := readJSONRows[model.Card](ctx, s.db,
			`SELECT json FROM cards WHERE column_id = ? ORDER BY position, id`, col.ID)
		if err != nil {
			return model.BoardData{}, err
		}
		data.Cards[col.ID] = cards
	}
	return data, nil
}

func (s *Store) SaveCard(ctx context.Context, c model.Card) (model.Card, error) {
	if err := s.requireCapability(ctx, CapBoards); err != nil {
		return model.Card{}, err
	}
	if strings.TrimSpace(c.Title) == "" {
		return model.Card{}, &ValidationError{Field: "title"}
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.Position == 0 {
		var max int64
		if err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), 0) FROM cards WHERE column_id = ?`,
			c.ColumnID).Scan(&max); err != nil {
			return model.Card{}, err
		}
		c.Position = max + 1000
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, column_id, position, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			column_id = excluded.column_id,
			position = excluded.position,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		c.ID, c.ColumnID, c.Position, mustJSON(c), s.now().UnixMilli())
	return c, err
}

func (s *Store) MoveCard(ctx context.Context, cardID, columnID string, position int64) error {
	if err := s.requireCapability(ctx, CapBoards); err != nil {
		return err
	}
	c, err := readJSONRow[model.Card](ctx, s.db, "card", cardID,
		`SELECT json FROM cards WHERE id = ?`, cardID)
	if err != nil {
		return err
	}
	c.ColumnID = columnID
	c.Position = position
	_, err = s.db.ExecContext(ctx,
		`UPDATE cards SET column_id = ?, position = ?, json = ?, updated_at_unixms = ? WHERE id = ?`,
		columnID, position, mustJSON(c), s.now().UnixMilli(), cardID)
	return err
}

func (s *Store) DeleteCard(ctx context.Context, cardID string) error {
	if err := s.requireCapability(ctx, CapBoards); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, cardID)
	return err
}

// RebalanceColumn reassigns evenly spaced positions ((i+1)*1000) to all
// cards in the column, preserving their current relative order.
func (s *Store) RebalanceColumn(ctx context.Context, columnID string) error {
	if err := s.requireCapability(ctx, CapBoards); err != nil {
		return err
	}
	cards, err := readJSONRows[model.Card](ctx, s.db,
		`SELECT json FROM cards WHERE column_id = ? ORDER BY position, id`, columnID)
	if err != nil {
		return err
	}
	now := s.now().UnixMilli()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i, c := range cards {
			c.Position = int64(i+1) * 1000
			if _, err := tx.ExecContext(ctx,
				`UPDATE cards SET position = ?, json = ?, updated_at_unixms = ? WHERE id = ?`,
				c.Position, mustJSON(c), now, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

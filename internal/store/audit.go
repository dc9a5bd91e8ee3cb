package store

import (
	"context"
	"database/sql"

	"fabledesk/internal/model"
)

// AppendAudit records a mutation outcome. Callers treat this as
// best-effort: a failed append must never fail the command it trails.
func (s *Store) AppendAudit(ctx context.Context, action, entityType, entityID, detailsJSON string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.insertAudit(ctx, tx, action, entityType, entityID, detailsJSON)
	})
}

func (s *Store) insertAudit(ctx context.Context, tx *sql.Tx, action, entityType, entityID, detailsJSON string) error {
	e := model.AuditEntry{
		ID:          s.newID(),
		TS:          s.now(),
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		DetailsJSON: detailsJSON,
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_log (id, ts_unixms, action, entity_type, entity_id, json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.TS.UnixMilli(), e.Action, e.EntityType, e.EntityID, mustJSON(e))
	return err
}

func (s *Store) ListAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return readJSONRows[model.AuditEntry](ctx, s.db,
		`SELECT json FROM audit_log ORDER BY ts_unixms DESC, id LIMIT ?`, limit)
}

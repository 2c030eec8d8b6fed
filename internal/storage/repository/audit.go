package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/neuro-store/internal/models"
)

func jsonOrNil(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// WriteAudit добавляет запись в журнал аудита.
func (s *Storage) WriteAudit(ctx context.Context, e models.AuditEntry) error {
	const op = "storage.WriteAudit"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	oldValues, err := jsonOrNil(e.OldValues)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	newValues, err := jsonOrNil(e.NewValues)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO audit_log (table_name, record_id, operation, user_id, old_values, new_values, ip_address, user_agent)
			  VALUES ($1, $2, $3, $4, $5::JSONB, $6::JSONB, $7, $8)`,
		e.TableName, e.RecordID, e.Operation, e.UserID, oldValues, newValues, e.IPAddress, e.UserAgent)
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

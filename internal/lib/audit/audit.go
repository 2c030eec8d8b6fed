// Package audit формирует и записывает записи журнала аудита административных операций.
package audit

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Операции журнала.
const (
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Writer добавляет запись в журнал аудита.
type Writer interface {
	WriteAudit(ctx context.Context, e models.AuditEntry) error
}

// Entry собирает запись журнала от имени actor.
func Entry(actor models.Principal, table string, recordID int64, operation string, newValues map[string]any) models.AuditEntry {
	e := models.AuditEntry{
		TableName: table,
		RecordID:  recordID,
		Operation: operation,
		NewValues: newValues,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		e.UserID = &uid
	}
	return e
}

// Write пишет запись в журнал. Ошибка только логируется, операция уже выполнена.
func Write(ctx context.Context, w Writer, log *slog.Logger, e models.AuditEntry) {
	if w == nil {
		return
	}
	if err := w.WriteAudit(ctx, e); err != nil {
		log.Error("failed to write audit entry",
			slog.String("table", e.TableName),
			slog.Int64("record_id", e.RecordID),
			slog.String("operation", e.Operation),
			sl.Err(err),
		)
	}
}

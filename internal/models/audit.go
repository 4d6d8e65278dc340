package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Audit actions recorded by the audit middleware and auth service.
const (
	AuditActionLogin       = "LOGIN"
	AuditActionLoginFailed = "LOGIN_FAILED"
	AuditActionCreate      = "CREATE"
	AuditActionUpdate      = "UPDATE"
	AuditActionDelete      = "DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"userId,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resourceId,omitempty"`
	NewValues  types.JSONText `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ipAddress"`
	UserAgent  string         `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

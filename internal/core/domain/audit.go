package domain

import "time"

// AuditAction is what happened to a report.
type AuditAction string

const (
	AuditCreated  AuditAction = "created"
	AuditUpdated  AuditAction = "updated"
	AuditDeleted  AuditAction = "deleted"
	AuditSigned   AuditAction = "signed"
	AuditUnsigned AuditAction = "unsigned"
	AuditExported AuditAction = "exported"
)

// AuditEntry records one change to a report.
type AuditEntry struct {
	ID       string      `json:"id" bson:"_id"`
	ReportID string      `json:"reportId" bson:"report_id"`
	Kind     ReportKind  `json:"kind" bson:"kind"`
	Action   AuditAction `json:"action" bson:"action"`
	Actor    string      `json:"actor" bson:"actor"`
	Detail   string      `json:"detail,omitempty" bson:"detail,omitempty"`
	At       time.Time   `json:"at" bson:"at"`
}

package domain

import "time"

// AuditAction tags an audit entry. The set is open; these are the actions the
// site records itself.
type AuditAction string

const (
	ActionLogin          AuditAction = "LOGIN"
	ActionRegister       AuditAction = "REGISTER"
	ActionCreateNews     AuditAction = "CREATE_NEWS"
	ActionEditNews       AuditAction = "EDIT_NEWS"
	ActionAddComment     AuditAction = "ADD_COMMENT"
	ActionApproveComment AuditAction = "APPROVE_COMMENT"
	ActionDeleteComment  AuditAction = "DELETE_COMMENT"
)

// AuditLogEntry is an immutable record of a state-changing action. The actor
// fields are snapshots of the user at the time of the action.
type AuditLogEntry struct {
	ID        string      `json:"id" bson:"entry_id"`
	Action    AuditAction `json:"action" bson:"action"`
	UserID    string      `json:"userId" bson:"user_id"`
	Username  string      `json:"username" bson:"username"`
	UserRole  Role        `json:"userRole" bson:"user_role"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
	IPAddress string      `json:"ipAddress" bson:"ip_address"`
	Details   string      `json:"details" bson:"details"`
}

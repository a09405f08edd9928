package domain

// BackupStatus is a backup's state. Backups are real persisted records;
// completion is an explicit admin call, not a timer.
type BackupStatus string

const (
	BackupPending   BackupStatus = "pending"
	BackupCompleted BackupStatus = "completed"
	BackupFailed    BackupStatus = "failed"
)

// Backup is a backup record at BACKUP#<id>/METADATA.
type Backup struct {
	ID          string       `json:"id" dynamodbav:"id"`
	Status      BackupStatus `json:"status" dynamodbav:"status"`
	InitiatedBy string       `json:"initiatedBy" dynamodbav:"initiatedBy"`
	Note        string       `json:"note,omitempty" dynamodbav:"note,omitempty"`
	SizeBytes   int64        `json:"sizeBytes,omitempty" dynamodbav:"sizeBytes,omitempty"`
	CreatedAt   string       `json:"createdAt" dynamodbav:"createdAt"`
	CompletedAt string       `json:"completedAt,omitempty" dynamodbav:"completedAt,omitempty"`
}

// MaintenanceStatus is a maintenance window's state.
type MaintenanceStatus string

const (
	MaintenanceScheduled MaintenanceStatus = "scheduled"
	MaintenanceActive    MaintenanceStatus = "active"
	MaintenanceCompleted MaintenanceStatus = "completed"
	MaintenanceCancelled MaintenanceStatus = "cancelled"
)

// MaintenanceWindow is a scheduled downtime record at MAINTENANCE#<id>/METADATA.
type MaintenanceWindow struct {
	ID        string            `json:"id" dynamodbav:"id"`
	Title     string            `json:"title" dynamodbav:"title"`
	Message   string            `json:"message,omitempty" dynamodbav:"message,omitempty"`
	Status    MaintenanceStatus `json:"status" dynamodbav:"status"`
	StartsAt  string            `json:"startsAt" dynamodbav:"startsAt"`
	EndsAt    string            `json:"endsAt" dynamodbav:"endsAt"`
	CreatedBy string            `json:"createdBy" dynamodbav:"createdBy"`
	CreatedAt string            `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string            `json:"updatedAt" dynamodbav:"updatedAt"`
}

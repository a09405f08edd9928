package domain

// AnnouncementStatus is an announcement's lifecycle state; its GSI1 partition
// key mirrors the status like ticket queues do.
type AnnouncementStatus string

const (
	AnnouncementDraft     AnnouncementStatus = "draft"
	AnnouncementScheduled AnnouncementStatus = "scheduled"
	AnnouncementPublished AnnouncementStatus = "published"
	AnnouncementArchived  AnnouncementStatus = "archived"
)

// CanTransitionAnnouncement reports whether from -> to follows
// draft -> scheduled -> published -> archived, allowing draft -> published
// for immediate publication.
func CanTransitionAnnouncement(from, to AnnouncementStatus) bool {
	switch from {
	case AnnouncementDraft:
		return to == AnnouncementScheduled || to == AnnouncementPublished
	case AnnouncementScheduled:
		return to == AnnouncementPublished || to == AnnouncementDraft
	case AnnouncementPublished:
		return to == AnnouncementArchived
	}
	return false
}

// Announcement is a platform-wide notice at ANNOUNCEMENT#<id>/METADATA.
type Announcement struct {
	ID       string             `json:"id" dynamodbav:"id"`
	Title    string             `json:"title" dynamodbav:"title"`
	Body     string             `json:"body" dynamodbav:"body"`
	Audience string             `json:"audience" dynamodbav:"audience"` // all|students|instructors
	Status   AnnouncementStatus `json:"status" dynamodbav:"status"`

	CreatedBy    string `json:"createdBy" dynamodbav:"createdBy"`
	ScheduledFor string `json:"scheduledFor,omitempty" dynamodbav:"scheduledFor,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty" dynamodbav:"publishedAt,omitempty"`
	ArchivedAt   string `json:"archivedAt,omitempty" dynamodbav:"archivedAt,omitempty"`

	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Notification is a per-user message at NOTIFICATION#<uid>/NOTIF#<ts>#<id>.
type Notification struct {
	ID        string `json:"id" dynamodbav:"id"`
	UserID    string `json:"userId" dynamodbav:"userId"`
	Title     string `json:"title" dynamodbav:"title"`
	Body      string `json:"body" dynamodbav:"body"`
	Kind      string `json:"kind,omitempty" dynamodbav:"kind,omitempty"`
	Read      bool   `json:"read" dynamodbav:"read"`
	ReadAt    string `json:"readAt,omitempty" dynamodbav:"readAt,omitempty"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
}

// NotificationTemplate is a reusable notification body at TEMPLATE#<id>/METADATA.
type NotificationTemplate struct {
	ID        string `json:"id" dynamodbav:"id"`
	Name      string `json:"name" dynamodbav:"name"`
	Subject   string `json:"subject" dynamodbav:"subject"`
	Body      string `json:"body" dynamodbav:"body"`
	CreatedBy string `json:"createdBy" dynamodbav:"createdBy"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt"`
}

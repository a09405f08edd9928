package domain

// TicketStatus is a support ticket's lifecycle state. The GSI1 partition key
// mirrors the current status and is rewritten on every transition.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
)

// CanTransitionTicket reports whether from -> to follows
// open -> in_progress -> resolved.
func CanTransitionTicket(from, to TicketStatus) bool {
	switch from {
	case TicketOpen:
		return to == TicketInProgress || to == TicketResolved
	case TicketInProgress:
		return to == TicketResolved
	}
	return false
}

// TicketPriority orders tickets within a status queue.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// ValidTicketPriority reports whether p is a known priority.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// SupportTicket is the metadata item at TICKET#<id>/METADATA.
type SupportTicket struct {
	ID       string         `json:"id" dynamodbav:"id"`
	UserID   string         `json:"userId" dynamodbav:"userId"`
	Subject  string         `json:"subject" dynamodbav:"subject"`
	Body     string         `json:"body" dynamodbav:"body"`
	Status   TicketStatus   `json:"status" dynamodbav:"status"`
	Priority TicketPriority `json:"priority" dynamodbav:"priority"`

	AssignedTo string `json:"assignedTo,omitempty" dynamodbav:"assignedTo,omitempty"`
	ResolvedBy string `json:"resolvedBy,omitempty" dynamodbav:"resolvedBy,omitempty"`
	ResolvedAt string `json:"resolvedAt,omitempty" dynamodbav:"resolvedAt,omitempty"`

	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string `json:"updatedAt" dynamodbav:"updatedAt"`
}

// TicketMessage is one message on a ticket at TICKET#<tid>/MESSAGE#<ts>#<mid>.
type TicketMessage struct {
	ID        string `json:"id" dynamodbav:"id"`
	TicketID  string `json:"ticketId" dynamodbav:"ticketId"`
	AuthorID  string `json:"authorId" dynamodbav:"authorId"`
	Body      string `json:"body" dynamodbav:"body"`
	Internal  bool   `json:"internal,omitempty" dynamodbav:"internal,omitempty"`
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
}

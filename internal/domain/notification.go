package domain

// NotificationType enumerates notification kinds produced by the core.
type NotificationType string

const (
	NotificationTicketEscalated NotificationType = "TICKET_ESCALATED"
	NotificationTicketResponded NotificationType = "TICKET_RESPONDED"
	NotificationTicketFlagged   NotificationType = "TICKET_FLAGGED"
)

// Notification is the decision to notify one recipient. Delivery transport
// is owned by the caller.
type Notification struct {
	RecipientAdminID string
	UnitID           string
	TicketID         string
	EscalationID     *string
	Type             NotificationType
	Title            string
	Message          string
}

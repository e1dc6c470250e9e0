package entity

import "time"

type NotificationTarget string

const (
	TargetCustomer NotificationTarget = "customer"
	TargetSeller   NotificationTarget = "seller"
	TargetAdmin    NotificationTarget = "admin"
)

// AdminBroadcastID is the sentinel target id for admin notifications,
// which address the whole admin audience rather than a specific account.
const AdminBroadcastID = "broadcast"

// NotificationTemplate maps a template id to rendering rules. Title and
// message templates use literal {name} placeholders; no expression
// evaluation happens at render time.
type NotificationTemplate struct {
	ID              string `json:"id"`
	TitleTemplate   string `json:"title_template"`
	MessageTemplate string `json:"message_template"`
	Type            string `json:"type"`
}

// NotificationEvent is created at dispatch time and is immutable. The core
// does not track delivery receipts.
type NotificationEvent struct {
	TargetType NotificationTarget     `json:"target_type"`
	TargetID   string                 `json:"target_id"`
	TemplateID string                 `json:"template_id"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Type       string                 `json:"type"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// PartitionKey keys the event on the bus so that notifications for the
// same target are delivered in order.
func (e NotificationEvent) PartitionKey() string {
	return string(e.TargetType) + ":" + e.TargetID
}

package template

import "time"

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPush     Channel = "push"
	ChannelTelegram Channel = "telegram"
)

// AllChannels lists channels in dispatch order.
func AllChannels() []Channel {
	return []Channel{ChannelEmail, ChannelWhatsApp, ChannelPush, ChannelTelegram}
}

const (
	SlugReconciliationRequested = "reconciliation-requested"
	SlugReconciliationApproved  = "reconciliation-approved"
	SlugReconciliationRejected  = "reconciliation-rejected"
	SlugAdvanceSalaryRequested  = "advance-salary-requested"
	SlugAdvanceSalaryDecided    = "advance-salary-decided"
	SlugVisitRequested          = "visit-requested"
	SlugVisitDecided            = "visit-decided"
	SlugTaskAssigned            = "task-assigned"
	SlugTaskUpdated             = "task-updated"
)

// Template is a slug-keyed message per channel. Subject and Body contain
// {{variable}} placeholders.
type Template struct {
	ID        string
	Channel   Channel
	Slug      string
	Name      string
	Subject   string
	Body      string
	UpdatedAt time.Time
}

type Rendered struct {
	Subject string
	Body    string
}

// ChatText formats the message for group chat: the subject as a bold header
// line followed by the body.
func (r Rendered) ChatText() string {
	if r.Subject == "" {
		return r.Body
	}
	return "*" + r.Subject + "*\n\n" + r.Body
}

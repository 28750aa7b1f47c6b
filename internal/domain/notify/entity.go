package notify

import (
	"github.com/cmlabs-hris/hris-notify/internal/domain/notification"
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
)

// Audience names who a decision-notify call reached.
type Audience string

const (
	AudienceAdmins   Audience = "admins"
	AudienceEmployee Audience = "employee"
)

// Recipient is one person a notification can reach.
type Recipient struct {
	EmployeeID string
	UserID     string
	Name       string
	Email      string
	Phone      string
}

// RecipientSet is the deduplicated set of addresses for one event. People
// holds one identity key per person the addresses belong to.
type RecipientSet struct {
	Emails  []string
	Phones  []string
	UserIDs []string
	People  []string
}

func (s RecipientSet) IsEmpty() bool {
	return len(s.Emails) == 0 && len(s.Phones) == 0 && len(s.UserIDs) == 0
}

// Count is the number of distinct people in the set.
func (s RecipientSet) Count() int {
	return len(s.People)
}

// SetOf builds a RecipientSet from individual recipients.
func SetOf(recipients ...Recipient) RecipientSet {
	b := NewSetBuilder()
	for _, r := range recipients {
		b.AddEmail(r.Email)
		b.AddPhone(r.Phone)
		b.AddUserID(r.UserID)
		b.AddPerson(r.Email, r.UserID, r.EmployeeID, r.Phone)
	}
	return b.Build()
}

// Message is what a dispatcher delivers: the rendered template plus the event
// metadata the push channel stores alongside the inbox entry.
type Message struct {
	Event    notification.NotificationType
	Rendered template.Rendered
	Data     map[string]string
}

// Delivery is the outcome of one send to one destination.
//
// Queued marks a push delivery whose only accepted leg is the in-app inbox
// entry handed to the batch writer. Success is then true, but the row is
// written later and a failed batch insert is only logged.
type Delivery struct {
	Channel   template.Channel `json:"channel"`
	To        string           `json:"to"`
	Success   bool             `json:"success"`
	Queued    bool             `json:"queued,omitempty"`
	MessageID string           `json:"messageId,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Result summarises a fan-out.
type Result struct {
	Recipients int        `json:"recipients"`
	Attempted  int        `json:"attempted"`
	Succeeded  int        `json:"succeeded"`
	Deliveries []Delivery `json:"deliveries"`
}

// Add records deliveries and updates the counters.
func (r *Result) Add(ds ...Delivery) {
	for _, d := range ds {
		r.Attempted++
		if d.Success {
			r.Succeeded++
		}
		r.Deliveries = append(r.Deliveries, d)
	}
}

package fixtures

import (
	"github.com/cmlabs-hris/hris-notify/internal/domain/template"
)

// message is the channel-neutral wording of one event. Chat and push
// channels share the short form; email gets the long form.
type message struct {
	name      string
	subject   string
	short     string
	emailBody string
}

var defaultMessages = map[string]message{
	template.SlugReconciliationRequested: {
		name:    "Reconciliation requested",
		subject: "Attendance reconciliation request from {{employee_name}}",
		short:   "{{employee_name}} ({{employee_code}}) asked to correct {{reconciliation_type}} for {{attendance_date}}: in {{requested_in_time}}, out {{requested_out_time}}.",
		emailBody: `<p>Hello,</p>
<p>{{employee_name}} ({{employee_code}}, {{designation}}) submitted an attendance reconciliation request.</p>
<ul>
<li>Date: {{attendance_date}}</li>
<li>Type: {{reconciliation_type}}</li>
<li>Requested in: {{requested_in_time}} ({{in_time_remarks}})</li>
<li>Requested out: {{requested_out_time}} ({{out_time_remarks}})</li>
</ul>
<p>Please review it in {{app_name}}.</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugReconciliationApproved: {
		name:    "Reconciliation approved",
		subject: "Your attendance reconciliation for {{attendance_date}} was approved",
		short:   "Your {{reconciliation_type}} reconciliation for {{attendance_date}} was approved on {{reviewed_at}}.",
		emailBody: `<p>Hi {{employee_name}},</p>
<p>Your {{reconciliation_type}} reconciliation for {{attendance_date}} was approved on {{reviewed_at}}.</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugReconciliationRejected: {
		name:    "Reconciliation rejected",
		subject: "Your attendance reconciliation for {{attendance_date}} was rejected",
		short:   "Your {{reconciliation_type}} reconciliation for {{attendance_date}} was rejected on {{reviewed_at}}.",
		emailBody: `<p>Hi {{employee_name}},</p>
<p>Your {{reconciliation_type}} reconciliation for {{attendance_date}} was rejected on {{reviewed_at}}. Contact HR if you have questions.</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugAdvanceSalaryRequested: {
		name:    "Advance salary requested",
		subject: "Advance salary request from {{employee_name}}",
		short:   "{{employee_name}} requested an advance of {{amount}} over {{repayment_months}} month(s): {{reason}}.",
		emailBody: `<p>Hello,</p>
<p>{{employee_name}} ({{employee_code}}) requested an advance salary of <b>{{amount}}</b>, repaid over {{repayment_months}} month(s).</p>
<p>Reason: {{reason}}</p>
<p>Requested on {{request_date}}.</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugAdvanceSalaryDecided: {
		name:    "Advance salary decided",
		subject: "Your advance salary request is {{status}}",
		short:   "Your advance salary request for {{amount}} is {{status}}. Reason: {{rejection_reason}}.",
		emailBody: `<p>Hi {{employee_name}},</p>
<p>Your advance salary request for <b>{{amount}}</b> is <b>{{status}}</b>.</p>
<p>Note: {{rejection_reason}}</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugVisitRequested: {
		name:    "Visit requested",
		subject: "Client visit request from {{employee_name}}",
		short:   "{{employee_name}} plans to visit {{client_name}} at {{location}} on {{visit_date}}: {{purpose}}.",
		emailBody: `<p>Hello,</p>
<p>{{employee_name}} ({{employee_code}}) requested a client visit.</p>
<ul>
<li>Client: {{client_name}}</li>
<li>Location: {{location}}</li>
<li>When: {{visit_date}}</li>
<li>Purpose: {{purpose}}</li>
</ul>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugVisitDecided: {
		name:    "Visit decided",
		subject: "Your visit to {{client_name}} is {{status}}",
		short:   "Your visit to {{client_name}} on {{visit_date}} is {{status}}. Reason: {{rejection_reason}}.",
		emailBody: `<p>Hi {{employee_name}},</p>
<p>Your visit to {{client_name}} on {{visit_date}} is <b>{{status}}</b>.</p>
<p>Note: {{rejection_reason}}</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugTaskAssigned: {
		name:    "Task assigned",
		subject: "New task: {{task_title}}",
		short:   "{{assigned_by}} assigned you \"{{task_title}}\" ({{priority}}), due {{due_date}}.",
		emailBody: `<p>Hi {{employee_name}},</p>
<p>{{assigned_by}} assigned you a new task.</p>
<p><b>{{task_title}}</b> ({{priority}} priority, due {{due_date}})</p>
<p>{{task_description}}</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
	template.SlugTaskUpdated: {
		name:    "Task updated",
		subject: "Task updated: {{task_title}}",
		short:   "\"{{task_title}}\" is now {{task_status}} ({{priority}}), due {{due_date}}.",
		emailBody: `<p>Hi {{employee_name}},</p>
<p>The task <b>{{task_title}}</b> was updated. Status: {{task_status}}, priority: {{priority}}, due {{due_date}}.</p>
<p>&copy; {{year}} {{company_name}}</p>`,
	},
}

// groupSlugs announce new requests; they go to the admin group chat.
// Employee-facing decisions never post to the group.
var groupSlugs = map[string]bool{
	template.SlugReconciliationRequested: true,
	template.SlugAdvanceSalaryRequested:  true,
	template.SlugVisitRequested:          true,
}

// DefaultTemplates returns a starter template for every event on every
// channel it applies to.
func DefaultTemplates() []template.Template {
	slugs := []string{
		template.SlugReconciliationRequested,
		template.SlugReconciliationApproved,
		template.SlugReconciliationRejected,
		template.SlugAdvanceSalaryRequested,
		template.SlugAdvanceSalaryDecided,
		template.SlugVisitRequested,
		template.SlugVisitDecided,
		template.SlugTaskAssigned,
		template.SlugTaskUpdated,
	}

	var out []template.Template
	for _, slug := range slugs {
		m := defaultMessages[slug]
		for _, ch := range template.AllChannels() {
			if ch == template.ChannelTelegram && !groupSlugs[slug] {
				continue
			}
			t := template.Template{
				Channel: ch,
				Slug:    slug,
				Name:    m.name,
				Subject: m.subject,
				Body:    m.short,
			}
			if ch == template.ChannelEmail {
				t.Body = m.emailBody
			}
			out = append(out, t)
		}
	}
	return out
}

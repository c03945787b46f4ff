package mailing

import "github.com/aoe-motors/lead-tracker/internal/domain"

// Kind selects one of the customer emails.
type Kind string

const (
	KindFollowUp Kind = "follow_up"
	KindWelcome  Kind = "welcome"
	KindLost     Kind = "lost"
)

// KindForStatus picks the email that matches a booking's workflow status.
func KindForStatus(s domain.ActionStatus) (Kind, bool) {
	switch s {
	case domain.StatusFollowUp:
		return KindFollowUp, true
	case domain.StatusConverted:
		return KindWelcome, true
	case domain.StatusLost:
		return KindLost, true
	}
	return "", false
}

type emailTemplate struct {
	subject string
	text    string
	html    string
}

const htmlFooter = `
<p>
  <a href="{{ brochure_link }}">Download the {{ vehicle | escape }} brochure</a> &middot;
  <a href="{{ video_link }}">Watch the {{ vehicle | escape }} video</a>
</p>
<img src="{{ pixel_url }}" width="1" height="1" alt="" style="display:none">`

var emailTemplates = map[Kind]emailTemplate{
	KindFollowUp: {
		subject: `Follow-up on your {{ vehicle }} Test Drive`,
		text: `Dear {{ name }},

Thank you for test driving the {{ vehicle }}. Here are some features: {{ features }}
{% if competitor %}Compared with the {{ competitor }}: {{ competitor_features }}
{% endif %}
Brochure: {{ brochure_link }}
Video: {{ video_link }}

Regards, AOE Motors`,
		html: `<p>Dear {{ name | escape }},</p>
<p>Thank you for test driving the {{ vehicle | escape }}. Here are some features: {{ features | escape }}</p>
{% if competitor %}<p>Compared with the {{ competitor | escape }}: {{ competitor_features | escape }}</p>{% endif %}
<p>Regards, AOE Motors</p>` + htmlFooter,
	},
	KindWelcome: {
		subject: `Welcome to the AOE Family, {{ name }}!`,
		text: `Dear {{ name }},
Welcome! We're thrilled you chose the {{ vehicle }}. Next steps emailed soon.

Brochure: {{ brochure_link }}
Video: {{ video_link }}

AOE Motors Team`,
		html: `<p>Dear {{ name | escape }},</p>
<p>Welcome! We're thrilled you chose the {{ vehicle | escape }}. Next steps emailed soon.</p>
<p>AOE Motors Team</p>` + htmlFooter,
	},
	KindLost: {
		subject: `We Miss You, {{ name }}!`,
		text: `Dear {{ name }},
We noticed you haven't moved forward with {{ vehicle }}. Let us know how to help.

Brochure: {{ brochure_link }}
Video: {{ video_link }}

AOE Motors Team`,
		html: `<p>Dear {{ name | escape }},</p>
<p>We noticed you haven't moved forward with {{ vehicle | escape }}. Let us know how to help.</p>
<p>AOE Motors Team</p>` + htmlFooter,
	},
}

package render

import (
	"context"
	"regexp"
	"strings"
	"time"

	"case-automation/internal/model"
)

var placeholderRe = regexp.MustCompile(`\{(.*?)\}`)

// Render resolves every {variable} placeholder in body against the
// event's description table and applies the channel envelope. A body
// without placeholders passes through literally. Missing values
// substitute as empty and set SuppressSend instead of failing.
func (r *Renderer) Render(ctx context.Context, body string, event model.WebhookEvent, channel Channel, customerID string) Rendered {
	out := Rendered{}

	description := event.Object.Description
	for _, name := range placeholders(body) {
		value, ok := r.extractor.FromText(description, name)
		if !ok {
			r.l.Warnf(ctx, "Could not resolve template variable %q from description", name)
			out.SuppressSend = true
		} else if name == r.cfg.StartTimeVariable {
			value = r.displayTime(ctx, value)
		}
		body = strings.ReplaceAll(body, "{"+name+"}", value)
	}

	switch channel {
	case ChannelEmail:
		out.Text = r.mailEnvelope(ctx, body, customerID, &out.SuppressSend)
	default:
		out.Text = body + " \n"
	}

	return out
}

// Substitute resolves {variable} placeholders without applying a
// channel envelope or timestamp conversion, for search query templates.
// The boolean is false when any variable could not be resolved.
func (r *Renderer) Substitute(ctx context.Context, body string, event model.WebhookEvent) (string, bool) {
	resolved := true
	description := event.Object.Description
	for _, name := range placeholders(body) {
		value, ok := r.extractor.FromText(description, name)
		if !ok {
			r.l.Warnf(ctx, "Could not resolve template variable %q from description", name)
			resolved = false
		}
		body = strings.ReplaceAll(body, "{"+name+"}", value)
	}
	return body, resolved
}

// placeholders lists the distinct {variable} names in template order.
func placeholders(body string) []string {
	var names []string
	seen := map[string]bool{}
	for _, sub := range placeholderRe.FindAllStringSubmatch(body, -1) {
		if !seen[sub[1]] {
			names = append(names, sub[1])
			seen[sub[1]] = true
		}
	}
	return names
}

// displayTime converts the raw start time to the display timezone and
// layout. Conversion failure keeps the raw value; the message still goes
// out.
func (r *Renderer) displayTime(ctx context.Context, raw string) string {
	parsed, err := time.Parse(r.cfg.StartTimeLayout, raw)
	if err != nil {
		r.l.Errorf(ctx, "Could not convert start time %q: %v", raw, err)
		return raw
	}
	layout := r.cfg.DisplayLayout
	if layout == "" {
		layout = r.cfg.StartTimeLayout
	}
	return parsed.In(r.location).Format(layout)
}

// mailEnvelope prepends the recipient line and wraps the body with the
// configured header, footer and sender name.
func (r *Renderer) mailEnvelope(ctx context.Context, body, customerID string, suppress *bool) string {
	var sb strings.Builder

	if customerID != "" {
		if customer, ok := r.customers[customerID]; ok && customer.Recipient != "" {
			sb.WriteString("mailto:" + customer.Recipient + "\n")
		} else {
			r.l.Warnf(ctx, "Customer %q has no recipient configured, using placeholder", customerID)
			sb.WriteString("mailto:{recipient}\n")
			*suppress = true
		}
	} else {
		r.l.Warn(ctx, "Could not find customer in tags, using default template")
		sb.WriteString("mailto:{recipient}\n")
		*suppress = true
	}

	if r.mail.Header != "" {
		sb.WriteString(r.mail.Header + " \n\n")
	}
	sb.WriteString(body + " \n")
	if r.mail.Footer != "" {
		sb.WriteString(r.mail.Footer + " \n")
	}
	if r.mail.SenderName != "" {
		sb.WriteString(r.mail.SenderName)
	}

	return sb.String()
}

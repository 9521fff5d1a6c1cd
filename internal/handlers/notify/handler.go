package notify

import (
	"context"
	"fmt"
	"strings"

	"case-automation/internal/dispatch"
	"case-automation/internal/model"
	"case-automation/internal/render"
	"case-automation/pkg/log"
)

// Config carries the notification routing settings.
type Config struct {
	// InternalCustomerID routes internal rules to the operations team's
	// own contact entry instead of the customer resolved from tags.
	InternalCustomerID string
	// DebugCustomerID routes all traffic of debug rules.
	DebugCustomerID string
}

// Handler executes notify.sendNotification actions across the
// configured platforms.
type Handler struct {
	cfg       Config
	customers model.CustomerDirectory
	renderer  Renderer
	poster    Poster
	mailer    Mailer
	l         log.Logger
}

// New creates the notification handler.
func New(cfg Config, customers model.CustomerDirectory, renderer Renderer, poster Poster, mailer Mailer, l log.Logger) *Handler {
	return &Handler{cfg: cfg, customers: customers, renderer: renderer, poster: poster, mailer: mailer, l: l}
}

// Handle routes one action function.
func (h *Handler) Handle(ctx context.Context, function string, action model.Action, event model.WebhookEvent) dispatch.Result {
	switch function {
	case "sendNotification":
		return h.sendNotification(ctx, action, event)
	default:
		return dispatch.Result{Err: fmt.Errorf("unknown notification function %q", function)}
	}
}

func (h *Handler) sendNotification(ctx context.Context, action model.Action, event model.WebhookEvent) dispatch.Result {
	platforms := action.StringListParam("platforms")
	if len(platforms) == 0 {
		platforms = []string{"email"}
	}

	customerID := h.routeCustomer(ctx, action, event)

	title := action.StringParam("title")
	if title == "" {
		title = event.Object.Title
	}
	body := action.StringParam("short_template")
	if body == "" {
		body = action.StringParam("long_template")
	}

	var sent []string
	var failures []string
	for _, platform := range platforms {
		var err error
		switch platform {
		case "email":
			result := h.mailer.CreateMailTask(ctx, action, event, customerID)
			err = result.Err
		case "slack":
			err = h.postChat(ctx, body, event, render.ChannelSlack, customerID, title)
		case "teams":
			err = h.postChat(ctx, body, event, render.ChannelTeams, customerID, title)
		default:
			err = fmt.Errorf("unsupported platform %q", platform)
		}
		if err != nil {
			h.l.Errorf(ctx, "Notification via %s failed: %v", platform, err)
			failures = append(failures, platform)
			continue
		}
		sent = append(sent, platform)
	}

	if len(failures) > 0 {
		return dispatch.Result{
			Success: false,
			Err:     fmt.Errorf("notification failed on: %s", strings.Join(failures, ", ")),
		}
	}
	return dispatch.Result{Success: true, Action: "Sent notification via " + strings.Join(sent, ", ")}
}

// routeCustomer picks the target customer entry: debug and internal
// rules override the customer resolved from the event tags.
func (h *Handler) routeCustomer(ctx context.Context, action model.Action, event model.WebhookEvent) string {
	if action.BoolParam("debug") && h.cfg.DebugCustomerID != "" {
		return h.cfg.DebugCustomerID
	}
	if action.BoolParam("internal") && h.cfg.InternalCustomerID != "" {
		return h.cfg.InternalCustomerID
	}
	customerID, found := h.renderer.ResolveCustomer(event.Object.Tags)
	if !found {
		h.l.Warnf(ctx, "No customer found in tags %v", event.Object.Tags)
	}
	return customerID
}

func (h *Handler) postChat(ctx context.Context, body string, event model.WebhookEvent, channel render.Channel, customerID, title string) error {
	customer, ok := h.customers[customerID]
	if !ok {
		return fmt.Errorf("no contact entry for customer %q", customerID)
	}

	var webhookURL string
	switch channel {
	case render.ChannelSlack:
		webhookURL = customer.SlackURL
	case render.ChannelTeams:
		webhookURL = customer.TeamsURL
	}
	if webhookURL == "" {
		return fmt.Errorf("customer %q has no %s webhook configured", customerID, channel)
	}

	// Unresolved variables withhold the mail path only; chat messages go
	// out with the missing values blanked.
	rendered := h.renderer.Render(ctx, body, event, channel, customerID)

	var payload map[string]string
	switch channel {
	case render.ChannelSlack:
		payload = map[string]string{"text": fmt.Sprintf("*%s*\n%s", title, rendered.Text)}
	case render.ChannelTeams:
		payload = map[string]string{"text": fmt.Sprintf("***%s***</br><pre>%s</pre>", title, rendered.Text)}
	}
	return h.poster.PostMessage(ctx, webhookURL, payload)
}

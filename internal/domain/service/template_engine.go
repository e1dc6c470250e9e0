package service

import (
	"strings"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

// RenderedNotification is the output of template rendering.
type RenderedNotification struct {
	Title   string
	Message string
	Type    string
}

// TemplateEngine renders notification titles and messages from a static
// registry of templates. Substitution is literal string replacement of
// {name} placeholders; there is no expression evaluation and no runtime
// code surface.
type TemplateEngine struct {
	templates map[string]entity.NotificationTemplate
}

// NewTemplateEngine returns an engine preloaded with the platform's
// notification templates.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]entity.NotificationTemplate),
	}
	for _, t := range defaultTemplates {
		e.Register(t)
	}
	return e
}

// Register adds or replaces a template in the registry.
func (e *TemplateEngine) Register(t entity.NotificationTemplate) {
	e.templates[t.ID] = t
}

// Render resolves a template id against the registry and substitutes the
// supplied variables. A template id absent from the registry or a
// placeholder absent from variables is a programmer error and is surfaced,
// not swallowed.
func (e *TemplateEngine) Render(templateID string, variables map[string]string) (*RenderedNotification, error) {
	tmpl, ok := e.templates[templateID]
	if !ok {
		return nil, errors.UnknownTemplate(templateID)
	}

	title, err := substitute(templateID, tmpl.TitleTemplate, variables)
	if err != nil {
		return nil, err
	}
	message, err := substitute(templateID, tmpl.MessageTemplate, variables)
	if err != nil {
		return nil, err
	}

	return &RenderedNotification{
		Title:   title,
		Message: message,
		Type:    tmpl.Type,
	}, nil
}

// substitute replaces every {name} placeholder with its variable value,
// failing on the first placeholder that has no entry.
func substitute(templateID, tmpl string, variables map[string]string) (string, error) {
	var b strings.Builder
	rest := tmpl

	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}

		name := rest[open+1 : open+end]
		value, ok := variables[name]
		if !ok {
			return "", errors.MissingVariable(templateID, name)
		}

		b.WriteString(rest[:open])
		b.WriteString(value)
		rest = rest[open+end+1:]
	}
}

var defaultTemplates = []entity.NotificationTemplate{
	{
		ID:              "order_shipped",
		TitleTemplate:   "Order shipped",
		MessageTemplate: "Your order {orderId} has shipped",
		Type:            "order",
	},
	{
		ID:              "order_confirmed",
		TitleTemplate:   "Order confirmed",
		MessageTemplate: "Order {orderId} was confirmed by {sellerName}",
		Type:            "order",
	},
	{
		ID:              "payment_received",
		TitleTemplate:   "Payment received",
		MessageTemplate: "We received your payment of {amount} for order {orderId}",
		Type:            "payment",
	},
	{
		ID:              "new_message",
		TitleTemplate:   "New message from {senderName}",
		MessageTemplate: "{preview}",
		Type:            "chat",
	},
	{
		ID:              "product_sold",
		TitleTemplate:   "Product sold",
		MessageTemplate: "Your listing {productTitle} was purchased by {buyerName}",
		Type:            "order",
	},
	{
		ID:              "payout_processed",
		TitleTemplate:   "Payout processed",
		MessageTemplate: "A payout of {amount} has been sent to your account",
		Type:            "payment",
	},
	{
		ID:              "system_alert",
		TitleTemplate:   "System alert",
		MessageTemplate: "{details}",
		Type:            "system",
	},
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
)

func TestRenderOrderShipped(t *testing.T) {
	engine := NewTemplateEngine()

	rendered, err := engine.Render("order_shipped", map[string]string{"orderId": "ORD-123"})
	require.NoError(t, err)

	assert.Equal(t, "Order shipped", rendered.Title)
	assert.Equal(t, "Your order ORD-123 has shipped", rendered.Message)
	assert.Equal(t, "order", rendered.Type)
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	engine := NewTemplateEngine()
	engine.Register(entity.NotificationTemplate{
		ID:              "echo",
		TitleTemplate:   "{word} {word}",
		MessageTemplate: "{word}",
		Type:            "system",
	})

	rendered, err := engine.Render("echo", map[string]string{"word": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello hello", rendered.Title)
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine := NewTemplateEngine()

	_, err := engine.Render("no_such_template", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNKNOWN_TEMPLATE"))
}

func TestRenderMissingVariable(t *testing.T) {
	engine := NewTemplateEngine()

	_, err := engine.Render("order_shipped", map[string]string{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "MISSING_VARIABLE"))
	assert.Contains(t, err.Error(), "orderId")
}

func TestRenderReportsFirstMissingVariable(t *testing.T) {
	engine := NewTemplateEngine()
	engine.Register(entity.NotificationTemplate{
		ID:              "two_vars",
		TitleTemplate:   "t",
		MessageTemplate: "{first} then {second}",
		Type:            "system",
	})

	_, err := engine.Render("two_vars", map[string]string{"second": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
}

func TestRenderExtraVariablesIgnored(t *testing.T) {
	engine := NewTemplateEngine()

	rendered, err := engine.Render("order_shipped", map[string]string{
		"orderId": "ORD-9",
		"unused":  "whatever",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your order ORD-9 has shipped", rendered.Message)
}

func TestRenderLiteralSubstitutionOnly(t *testing.T) {
	engine := NewTemplateEngine()
	engine.Register(entity.NotificationTemplate{
		ID:              "literal",
		TitleTemplate:   "t",
		MessageTemplate: "{value}",
		Type:            "system",
	})

	// A value that looks like a placeholder must not be re-expanded.
	rendered, err := engine.Render("literal", map[string]string{"value": "{orderId}"})
	require.NoError(t, err)
	assert.Equal(t, "{orderId}", rendered.Message)
}

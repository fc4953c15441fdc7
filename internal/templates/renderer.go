package templates

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

// Имена шаблонов сообщений покупателю
const (
	Products         = "products"
	NoProducts       = "no_products"
	Variants         = "variants"
	PaymentMethods   = "payment_methods"
	EmailPrompt      = "email_prompt"
	EmailInvalid     = "email_invalid"
	Invoice          = "invoice"
	CheckoutFailed   = "checkout_failed"
	PaymentConfirmed = "payment_confirmed"
	TrackingOff      = "tracking_unavailable"
	NotFound         = "not_found"
	Cancelled        = "cancelled"
	Help             = "help"
	Idle             = "idle"
	Failed           = "failed"
)

var required = []string{
	Products, NoProducts, Variants, PaymentMethods, EmailPrompt, EmailInvalid,
	Invoice, CheckoutFailed, PaymentConfirmed, TrackingOff, NotFound, Cancelled, Help, Idle, Failed,
}

//go:embed files/*.tmpl
var embedded embed.FS

// markdownEscaper экранирует спецсимволы Telegram Markdown (v1)
var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

var funcs = template.FuncMap{
	"md": markdownEscaper.Replace,
}

// Renderer рендерит тексты сообщений покупателю
type Renderer struct {
	logger *zap.Logger
	tmpl   *template.Template
}

// NewRenderer загружает шаблоны из dir; пустой dir: встроенные шаблоны.
// Каждый шаблон из списка имён обязан быть определён.
func NewRenderer(logger *zap.Logger, dir string) (*Renderer, error) {
	var (
		tmpl *template.Template
		err  error
	)
	if dir == "" {
		tmpl, err = template.New("messages").Funcs(funcs).ParseFS(embedded, "files/*.tmpl")
	} else {
		tmpl, err = template.New("messages").Funcs(funcs).ParseFS(os.DirFS(dir), "*.tmpl")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse message templates: %w", err)
	}

	for _, name := range required {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("message template %q is not defined", name)
		}
	}

	logger.Debug("message templates loaded", zap.String("dir", dir))
	return &Renderer{
		logger: logger,
		tmpl:   tmpl,
	}, nil
}

// Render рендерит шаблон name с данными data
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// MustRender как Render, но при ошибке логирует и возвращает запасной текст.
// Покупатель всегда получает хоть какое-то сообщение.
func (r *Renderer) MustRender(name string, data any, fallback string) string {
	text, err := r.Render(name, data)
	if err != nil {
		r.logger.Error("failed to render message", zap.String("template", name), zap.Error(err))
		return fallback
	}
	return text
}

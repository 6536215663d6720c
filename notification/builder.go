package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/google/uuid"
)

//go:embed templates/*
var templateFS embed.FS

// Job is one message to one recipient on one channel.
type Job struct {
	ID        string
	Type      string
	Channel   string
	OrderID   string
	UserID    string
	Recipient string
	Subject   string
	Body      string
	RequestID string
}

type BuilderConfig struct {
	BusinessName string
	AdminEmail   string
	AdminPhone   string
	// AdminURL is linked from the new-order email when set.
	AdminURL string
	Location *time.Location
}

// Builder renders order events into notification jobs.
type Builder struct {
	cfg   BuilderConfig
	email *htmltemplate.Template
	chat  *texttemplate.Template
}

var statusMessages = map[models.OrderStatus]string{
	models.StatusPending:   "Your order has been confirmed and is being prepared for delivery.",
	models.StatusCompleted: "Your order has been delivered. We hope you enjoyed our products!",
}

var chatStatusMessages = map[models.OrderStatus]string{
	models.StatusPending:   "Your order has been confirmed and is being prepared! 📦",
	models.StatusCompleted: "Your order has been delivered! 🎉 We hope you enjoyed it!",
}

const defaultStatusMessage = "Your order status has been updated."

func rupees(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	email, err := htmltemplate.New("email").
		Funcs(htmltemplate.FuncMap{"rupees": rupees}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	chat, err := texttemplate.New("chat").
		Funcs(texttemplate.FuncMap{"rupees": rupees}).
		ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse chat templates: %w", err)
	}
	return &Builder{cfg: cfg, email: email, chat: chat}, nil
}

type templateData struct {
	BusinessName      string
	AdminURL          string
	OrderID           string
	CustomerName      string
	CustomerPhone     string
	DeliveryAddress   string
	Items             []models.OrderItem
	Total             float64
	Status            models.OrderStatus
	StatusMessage     string
	ChatStatusMessage string
	Date              string
}

func (b *Builder) data(order *models.Order, at time.Time) templateData {
	return templateData{
		BusinessName:    b.cfg.BusinessName,
		AdminURL:        b.cfg.AdminURL,
		OrderID:         order.ID.String(),
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		DeliveryAddress: order.DeliveryAddress,
		Items:           order.Items,
		Total:           order.TotalAmount,
		Status:          order.Status,
		Date:            at.In(b.cfg.Location).Format("02 Jan 2006, 03:04 PM"),
	}
}

// OrderPlaced returns the customer confirmation and the admin alert, each
// on email and WhatsApp.
func (b *Builder) OrderPlaced(order *models.Order) ([]Job, error) {
	d := b.data(order, order.CreatedAt)
	id := d.OrderID

	specs := []struct {
		typ, channel, to, subject, tmpl string
	}{
		{models.TypeOrderConfirmation, models.ChannelEmail, order.CustomerEmail, "Order Confirmation - " + id, "order_confirmation.html"},
		{models.TypeOrderConfirmation, models.ChannelWhatsApp, order.CustomerPhone, "", "order_confirmation.txt"},
		{models.TypeAdminNewOrder, models.ChannelEmail, b.cfg.AdminEmail, "New Order - " + id, "admin_new_order.html"},
		{models.TypeAdminNewOrder, models.ChannelWhatsApp, b.cfg.AdminPhone, "", "admin_new_order.txt"},
	}

	jobs := make([]Job, 0, len(specs))
	for _, s := range specs {
		body, err := b.render(s.channel, s.tmpl, d)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, b.job(order, s.typ, s.channel, s.to, s.subject, body))
	}
	return jobs, nil
}

// StatusChanged returns the customer status update on email and WhatsApp.
func (b *Builder) StatusChanged(order *models.Order) ([]Job, error) {
	d := b.data(order, order.UpdatedAt)
	d.StatusMessage = defaultStatusMessage
	if msg, ok := statusMessages[order.Status]; ok {
		d.StatusMessage = msg
	}
	d.ChatStatusMessage = defaultStatusMessage
	if msg, ok := chatStatusMessages[order.Status]; ok {
		d.ChatStatusMessage = msg
	}

	emailBody, err := b.render(models.ChannelEmail, "status_update.html", d)
	if err != nil {
		return nil, err
	}
	chatBody, err := b.render(models.ChannelWhatsApp, "status_update.txt", d)
	if err != nil {
		return nil, err
	}
	return []Job{
		b.job(order, models.TypeOrderStatusUpdate, models.ChannelEmail, order.CustomerEmail, "Order Update - "+d.OrderID, emailBody),
		b.job(order, models.TypeOrderStatusUpdate, models.ChannelWhatsApp, order.CustomerPhone, "", chatBody),
	}, nil
}

func (b *Builder) render(channel, name string, d templateData) (string, error) {
	var buf bytes.Buffer
	var err error
	if channel == models.ChannelEmail {
		err = b.email.ExecuteTemplate(&buf, name, d)
	} else {
		err = b.chat.ExecuteTemplate(&buf, name, d)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (b *Builder) job(order *models.Order, typ, channel, to, subject, body string) Job {
	return Job{
		ID:        uuid.NewString(),
		Type:      typ,
		Channel:   channel,
		OrderID:   order.ID.String(),
		UserID:    order.UserID,
		Recipient: strings.TrimSpace(to),
		Subject:   subject,
		Body:      body,
	}
}

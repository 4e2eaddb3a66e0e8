// Package notify turns committed bills into outbound messages.
//
// Formatting is pure (FormatBill) and delivery goes through the Notifier
// interface so the billing core never sees a transport. Delivery is
// fire-and-forget: nothing confirms the message arrived.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmynk/clinicledger/internal/models"
	"github.com/mmynk/clinicledger/internal/storage"
)

// Message is a formatted payload plus the address it should go to.
type Message struct {
	// To is the recipient phone number, digits only.
	To   string `json:"to"`
	Body string `json:"body"`
}

// Notifier hands a message to an outbound channel.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, msg Message) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Discard drops every message.
var Discard Notifier = NotifierFunc(func(context.Context, Message) error { return nil })

// FormatOptions controls the presentation of a bill message.
type FormatOptions struct {
	Title    string // first line, default "Pharmacy Bill"
	Currency string // symbol prefixed to amounts, default "₹"
	Footer   string // last line, default "Thank you for your purchase!"
}

func (o FormatOptions) withDefaults() FormatOptions {
	if o.Title == "" {
		o.Title = "Pharmacy Bill"
	}
	if o.Currency == "" {
		o.Currency = "₹"
	}
	if o.Footer == "" {
		o.Footer = "Thank you for your purchase!"
	}
	return o
}

// FormatBill renders a committed bill as a plain-text summary addressed to the
// bill's patient.
func FormatBill(bill *models.CommittedBill, opts FormatOptions) Message {
	opts = opts.withDefaults()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", opts.Title)
	fmt.Fprintf(&b, "Date: %s\n\n", bill.CreatedAt.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Patient: %s\n", bill.Patient.Name)
	fmt.Fprintf(&b, "Phone: %s\n\n", bill.Patient.Phone)
	b.WriteString("Items:\n")
	for _, item := range bill.Items {
		fmt.Fprintf(&b, "%s x %d = %s%s\n", item.ProductName, item.Quantity, opts.Currency, item.Total.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s%s\n\n", opts.Currency, bill.GrandTotal.StringFixed(2))
	b.WriteString(opts.Footer)

	return Message{
		To:   storage.PhoneDigits(bill.Patient.Phone),
		Body: b.String(),
	}
}

// WhatsAppLink builds a click-to-chat URL with the body pre-filled.
// Spaces are encoded as %20 rather than '+'.
func WhatsAppLink(msg Message) string {
	text := strings.ReplaceAll(url.QueryEscape(msg.Body), "+", "%20")
	return "https://wa.me/" + msg.To + "?text=" + text
}

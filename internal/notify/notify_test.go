package notify

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/clinicledger/internal/models"
)

func testBill() *models.CommittedBill {
	return &models.CommittedBill{
		ID:      "bill-1",
		Patient: models.Patient{ID: "4", Name: "Roopan Vishnu", Phone: "+91 9677055602"},
		Items: []models.LineItem{
			{ProductID: "p1", ProductName: "Paracetamol 500mg", Quantity: 2, UnitPrice: decimal.NewFromInt(25), Total: decimal.NewFromInt(50)},
			{ProductID: "p3", ProductName: "Insulin Glargine", Quantity: 1, UnitPrice: decimal.NewFromInt(850), Total: decimal.NewFromInt(850)},
		},
		GrandTotal: decimal.NewFromInt(900),
		CreatedAt:  time.Date(2025, 10, 4, 9, 30, 0, 0, time.UTC),
	}
}

func TestFormatBill(t *testing.T) {
	msg := FormatBill(testBill(), FormatOptions{})

	if msg.To != "919677055602" {
		t.Errorf("To = %q, want digits only", msg.To)
	}

	for _, want := range []string{
		"Pharmacy Bill",
		"Date: 04/10/2025 09:30",
		"Patient: Roopan Vishnu",
		"Phone: +91 9677055602",
		"Paracetamol 500mg x 2 = ₹50.00",
		"Insulin Glargine x 1 = ₹850.00",
		"Total: ₹900.00",
		"Thank you for your purchase!",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestFormatBillOptions(t *testing.T) {
	msg := FormatBill(testBill(), FormatOptions{Title: "Sunrise Clinic", Currency: "Rs ", Footer: "Get well soon"})

	if !strings.HasPrefix(msg.Body, "Sunrise Clinic\n") {
		t.Errorf("expected custom title, got:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "Total: Rs 900.00") {
		t.Errorf("expected custom currency, got:\n%s", msg.Body)
	}
	if !strings.HasSuffix(msg.Body, "Get well soon") {
		t.Errorf("expected custom footer, got:\n%s", msg.Body)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink(Message{To: "919876543211", Body: "Hello Priya, total: ₹50 & thanks"})

	if !strings.HasPrefix(link, "https://wa.me/919876543211?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if strings.Contains(link, "+") {
		t.Errorf("spaces should be %%20, got %s", link)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if got := u.Query().Get("text"); got != "Hello Priya, total: ₹50 & thanks" {
		t.Errorf("decoded text = %q", got)
	}
}

func TestWhatsAppNotifier(t *testing.T) {
	var links []string
	n := &WhatsAppNotifier{OnLink: func(link string) { links = append(links, link) }}

	if err := n.Notify(context.Background(), Message{To: "", Body: "x"}); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("expected ErrNoRecipient, got %v", err)
	}
	if err := n.Notify(context.Background(), FormatBill(testBill(), FormatOptions{})); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if len(links) != 1 || !strings.HasPrefix(links[0], "https://wa.me/919677055602?text=Pharmacy%20Bill") {
		t.Errorf("unexpected links: %v", links)
	}
}

func TestAsyncNotifier(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Message
	)
	inner := NotifierFunc(func(ctx context.Context, msg Message) error {
		if ctx.Err() != nil {
			t.Errorf("delivery context canceled: %v", ctx.Err())
		}
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		return nil
	})
	failing := NotifierFunc(func(context.Context, Message) error { return errors.New("channel down") })

	ctx, cancel := context.WithCancel(context.Background())
	a := Async(inner)
	if err := a.Notify(ctx, Message{To: "1", Body: "a"}); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	cancel()
	a.Wait()

	if len(received) != 1 {
		t.Errorf("expected 1 delivery, got %d", len(received))
	}

	b := Async(failing)
	if err := b.Notify(context.Background(), Message{To: "1"}); err != nil {
		t.Errorf("async notify should swallow delivery errors, got %v", err)
	}
	b.Wait()
}

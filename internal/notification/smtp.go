package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type smtpMailer struct {
	host     string
	port     string
	username string
	password string
}

// NewSMTPMailer returns a Notifier that sends HTML mail over plain SMTP auth.
func NewSMTPMailer(host, port, username, password string) Notifier {
	return &smtpMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

func (m *smtpMailer) SendBookingConfirmation(_ context.Context, toEmail, toName string, bookings []BookingSummary) error {
	subject := "Your booking is confirmed"
	body := buildConfirmationBody(toName, bookings)

	msg := []byte(
		"From: " + m.username + "\r\n" +
			"To: " + toEmail + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.username, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func buildConfirmationBody(name string, bookings []BookingSummary) string {
	if name == "" {
		name = "Guest"
	}

	var sb strings.Builder
	sb.WriteString(`<div style="font-family: Arial, sans-serif; color: #333;">`)
	fmt.Fprintf(&sb, `<h1>Hello, %s!</h1>`, name)
	sb.WriteString(`<p>Your payment went through and your reservation is confirmed. Thank you for booking with us!</p>`)
	sb.WriteString(`<h2>Reservation details</h2>`)

	for _, b := range bookings {
		sb.WriteString(`<div style="background-color: #f9f9f9; padding: 15px; margin-bottom: 20px;">`)
		fmt.Fprintf(&sb, `<p><strong>Hotel:</strong> %s</p>`, b.HotelName)
		fmt.Fprintf(&sb, `<p><strong>Location:</strong> %s, %s</p>`, b.HotelAddress, b.HotelCity)
		fmt.Fprintf(&sb, `<p><strong>Check-in:</strong> %s</p>`, b.CheckIn.Format("January 2, 2006"))
		fmt.Fprintf(&sb, `<p><strong>Check-out:</strong> %s</p>`, b.CheckOut.Format("January 2, 2006"))
		fmt.Fprintf(&sb, `<p><strong>Total:</strong> %s %.2f</p>`, strings.ToUpper(b.Currency), float64(b.TotalPriceCents)/100)
		fmt.Fprintf(&sb, `<p><strong>Booking ID:</strong> %s</p>`, b.BookingID)
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`<p>We look forward to your stay.</p>`)
	sb.WriteString(`</div>`)
	return sb.String()
}

package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"venue-booking/config"
	"venue-booking/internal/model"

	"gopkg.in/gomail.v2"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends the guest confirmation (with a QR of the booking ref) and a
// copy to the venue admin.
type Mailer struct {
	sender     mailSender
	from       string
	adminEmail string
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		sender:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:       cfg.From,
		adminEmail: cfg.AdminEmail,
	}
}

func (m *Mailer) Name() string { return "mail" }

func (m *Mailer) Send(ctx context.Context, details *model.BookingDetails) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*gomail.Message, 0, 2)
	customer, err := m.customerMessage(details)
	if err != nil {
		return err
	}
	msgs = append(msgs, customer)

	if m.adminEmail != "" {
		admin, err := m.adminMessage(details)
		if err != nil {
			return err
		}
		msgs = append(msgs, admin)
	}

	return m.sender.DialAndSend(msgs...)
}

var customerTmpl = template.Must(template.New("customer").Parse(`
<h2>You're on the list, {{.Name}}!</h2>
<p><strong>{{.EventName}}</strong> on {{.Date}}</p>
<ul>
  <li>Booking reference: <strong>{{.BookingRef}}</strong></li>
  <li>Type: {{.TicketType}}</li>
  {{if .TableSelection}}<li>Table: {{.TableSelection}}</li>{{end}}
  <li>Quantity: {{.Quantity}}</li>
  <li>Total: {{printf "%.2f" .TotalAmount}}</li>
</ul>
<p>Show the attached QR code at the door.</p>
`))

var adminTmpl = template.Must(template.New("admin").Parse(`
<p>New booking <strong>{{.BookingRef}}</strong> for {{.EventName}} ({{.Date}})</p>
<ul>
  <li>Guest: {{.Name}} &lt;{{.Email}}&gt;</li>
  <li>Type: {{.TicketType}}{{if .TableSelection}} / {{.TableSelection}}{{end}}</li>
  <li>Quantity: {{.Quantity}}</li>
  <li>Total: {{printf "%.2f" .TotalAmount}}</li>
</ul>
`))

func render(tmpl *template.Template, details *model.BookingDetails) (string, error) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, details); err != nil {
		return "", fmt.Errorf("render %s mail: %w", tmpl.Name(), err)
	}
	return body.String(), nil
}

func (m *Mailer) customerMessage(details *model.BookingDetails) (*gomail.Message, error) {
	body, err := render(customerTmpl, details)
	if err != nil {
		return nil, err
	}
	qr, err := GenerateQRCode(details.BookingRef, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", details.Email)
	msg.SetHeader("Subject", "Booking confirmed #"+details.BookingRef)
	msg.SetBody("text/html", body)
	msg.Attach(details.BookingRef+".png", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(qr)
		return err
	}))
	return msg, nil
}

func (m *Mailer) adminMessage(details *model.BookingDetails) (*gomail.Message, error) {
	body, err := render(adminTmpl, details)
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.adminEmail)
	msg.SetHeader("Subject", "New booking "+details.BookingRef+" - "+details.EventName)
	msg.SetBody("text/html", body)
	return msg, nil
}

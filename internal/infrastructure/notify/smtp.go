// Package notify envía por SMTP los correos de estado de los trabajos.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/jhoicas/printshop-api/internal/application/ports"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var _ ports.Notifier = (*SMTPNotifier)(nil)

// Config configuración SMTP.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	ShopName  string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier envía un correo HTML por cada cambio de estado.
type SMTPNotifier struct {
	config Config
	tmpl   *template.Template
	send   sendFunc
}

// NewSMTPNotifier crea el notificador. Devuelve nil cuando no hay host configurado,
// lo que desactiva las notificaciones.
func NewSMTPNotifier(config Config) *SMTPNotifier {
	if config.Host == "" {
		return nil
	}
	if config.ShopName == "" {
		config.ShopName = config.FromName
	}
	return &SMTPNotifier{
		config: config,
		tmpl:   template.Must(template.New("status_change").Parse(statusChangeTemplate)),
		send:   smtp.SendMail,
	}
}

// SendStatusChangeEmail arma y envía el correo. smtp.SendMail no se puede cancelar,
// así que ctx solo limita cuánto espera el llamador.
func (n *SMTPNotifier) SendStatusChangeEmail(ctx context.Context, change ports.StatusChange) error {
	if change.CustomerEmail == "" {
		return fmt.Errorf("notify: customer has no email")
	}
	body, err := n.render(change)
	if err != nil {
		return fmt.Errorf("notify: render template: %w", err)
	}
	subject := fmt.Sprintf("Job %s is now %s", change.JobNumber, statusLabel(change.NewStatus))
	msg := n.buildHTMLEmail(change.CustomerEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)
	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- n.send(addr, auth, n.config.FromEmail, []string{change.CustomerEmail}, msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("notify: send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify: send email: %w", ctx.Err())
	}
}

func (n *SMTPNotifier) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		n.config.FromName,
		n.config.FromEmail,
		to,
		subject,
	)
	return []byte(headers + htmlBody)
}

func (n *SMTPNotifier) render(change ports.StatusChange) (string, error) {
	data := struct {
		CustomerName string
		JobNumber    string
		JobTitle     string
		OldStatus    string
		NewStatus    string
		ShopName     string
	}{
		CustomerName: change.CustomerName,
		JobNumber:    change.JobNumber,
		JobTitle:     change.JobTitle,
		OldStatus:    statusLabel(change.OldStatus),
		NewStatus:    statusLabel(change.NewStatus),
		ShopName:     n.config.ShopName,
	}
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// statusLabel convierte "in_progress" en "In Progress".
func statusLabel(status string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(status, "_", " "))
}

const statusChangeTemplate = `<!DOCTYPE html>
<html lang="en">
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a2e;">
  <h2>{{.ShopName}}</h2>
  <p>Hello{{if .CustomerName}} {{.CustomerName}}{{end}},</p>
  <p>The status of your job <strong>{{.JobNumber}}</strong>{{if .JobTitle}} ({{.JobTitle}}){{end}}
     changed from <strong>{{.OldStatus}}</strong> to <strong>{{.NewStatus}}</strong>.</p>
  <p>Thank you for your business.</p>
</body>
</html>
`

package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/changycj/tourneytrack/config"
	"github.com/changycj/tourneytrack/models"
)

// EmailService sends notification mail over SMTP. Delivery is best-effort:
// callers fire it from a goroutine and only log failures.
type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Implicit TLS
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		// STARTTLS (usually port 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return nil
}

var outcomeReportTemplate = template.Must(template.New("outcome_report").Parse(`<p>Hello!</p>
<p>Your tournament '{{.TournamentName}}' has a new outcome report for the
match between {{.WinnerName}} and {{.LoserName}}, reported by {{.ReporterName}}.</p>
<p>Winner: {{.WinnerName}}<br>Loser: {{.LoserName}}</p>
{{if .Metadata}}<ul>
{{range .Metadata}}<li>{{.Name}}
<ul>
{{if .Value.Winner}}<li>{{$.WinnerName}}: {{.Value.Winner}}</li>{{end}}
{{if .Value.Loser}}<li>{{$.LoserName}}: {{.Value.Loser}}</li>{{end}}
{{if .Value.Match}}<li>{{.Value.Match}}</li>{{end}}
</ul></li>
{{end}}</ul>{{end}}`))

type OutcomeReport struct {
	TournamentName string
	WinnerName     string
	LoserName      string
	ReporterName   string
	Metadata       []models.StatEntry
}

// SendOutcomeReportEmail notifies the tournament admin that a team has
// reported a preliminary match outcome awaiting approval.
func (s *EmailService) SendOutcomeReportEmail(adminEmail string, report OutcomeReport) error {
	var body bytes.Buffer
	if err := outcomeReportTemplate.Execute(&body, report); err != nil {
		return fmt.Errorf("failed to render outcome report email: %w", err)
	}
	subject := "TourneyTrack: New Outcome Report"
	return s.SendEmail([]string{adminEmail}, subject, body.String())
}

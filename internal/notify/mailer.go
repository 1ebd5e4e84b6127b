package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/yourorg/testtrack/pkg/config"
)

// Mailer sends assignment notifications over SMTP. Delivery is best-effort:
// callers dispatch sends on a goroutine and never wait on the result.
type Mailer struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	frontendURL string
	logger      *slog.Logger
}

// NewMailer creates a mailer from config
func NewMailer(cfg *config.Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Mailer{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUser,
		password:    cfg.SMTPPassword,
		from:        cfg.SMTPFrom,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		logger:      logger,
	}
}

// SendAssignment emails the assignee about a newly assigned test case. One
// attempt, no retry.
func (m *Mailer) SendAssignment(to, testCaseTitle, assignerName string, testCaseID, projectID int64) error {
	if m.host == "" {
		m.logger.Debug("smtp not configured, skipping assignment notification",
			slog.String("to", to),
		)
		return nil
	}

	link := fmt.Sprintf("%s/projects/%d/test-cases/%d", m.frontendURL, projectID, testCaseID)
	subject := fmt.Sprintf("New Test Case Assigned: %s", testCaseTitle)
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px;">
<h2>New Assignment</h2>
<p>Hello,</p>
<p>You have been assigned a new test case by <strong>%s</strong>.</p>
<div style="background-color: #f5f5f5; padding: 15px; margin: 20px 0;">
<h3 style="margin: 0 0 10px 0;">%s</h3>
<p style="margin: 0;">ID: #%d</p>
</div>
<p>Please log in to the system to review and execute the test case.</p>
<a href="%s">View Test Case</a>
</div>`, assignerName, testCaseTitle, testCaseID, link)

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send assignment email: %w", err)
	}

	m.logger.Info("assignment notification sent",
		slog.String("to", to),
		slog.Int64("test_case_id", testCaseID),
	)
	return nil
}

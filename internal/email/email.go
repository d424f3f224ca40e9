// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"sync"
	"time"
)

// Config holds email configuration
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	FromName    string
	UseTLS      bool
	FrontendURL string
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
	queue     *EmailQueue
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// UseQueue routes templated mail through q instead of sending inline.
func (s *Service) UseQueue(q *EmailQueue) {
	s.queue = q
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

const layoutHead = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f4e79; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .card { background: white; border-radius: 8px; padding: 16px; margin: 16px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .btn { display: inline-block; background: #1f4e79; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
        td { padding: 4px 8px; }
    </style>
</head>
<body>
<div class="container">`

const layoutFoot = `
    <div class="footer">
        ORA Fabtrack • Fabrication Project Tracking
    </div>
</div>
</body>
</html>
`

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	// Project invitation
	s.templates["project_invitation"] = template.Must(template.New("project_invitation").Parse(layoutHead + `
    <div class="header">
        <h2>You're invited to {{.ProjectName}}</h2>
    </div>
    <div class="content">
        <p>Hello{{if .InviteeName}} {{.InviteeName}}{{end}},</p>
        <p><strong>{{.InviterName}}</strong> added you to <strong>{{.ProjectName}}</strong> as <strong>{{.Role}}</strong>.</p>
        {{if .Assignments}}<div class="card"><p><strong>Equipment:</strong> {{.Assignments}}</p></div>{{end}}
        <a href="{{.InviteURL}}" class="btn">Accept Invitation</a>
        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            This invitation expires on {{.ExpiresAt}}. If you were not expecting this email, you can ignore it.
        </p>
    </div>` + layoutFoot))

	// VDCR review reminder
	s.templates["vdcr_reminder"] = template.Must(template.New("vdcr_reminder").Parse(layoutHead + `
    <div class="header">
        <h2>📄 Documents waiting on review</h2>
    </div>
    <div class="content">
        <p>Hi {{.RecipientName}},</p>
        <p>{{len .Documents}} document(s) in <strong>{{.ProjectName}}</strong> have not moved for a while.</p>
        <div class="card">
            <table>
                <tr><td><strong>Sr No</strong></td><td><strong>Document</strong></td><td><strong>Status</strong></td><td><strong>Updated</strong></td></tr>
                {{range .Documents}}<tr><td>{{.SrNo}}</td><td>{{.DocumentName}}</td><td>{{.Status}}</td><td>{{.Age}}</td></tr>
                {{end}}
            </table>
        </div>
        <a href="{{.ProjectURL}}" class="btn">Open VDCR</a>
    </div>` + layoutFoot))

	// VDCR status change
	s.templates["vdcr_status_changed"] = template.Must(template.New("vdcr_status_changed").Parse(layoutHead + `
    <div class="header">
        <h2>VDCR status changed</h2>
    </div>
    <div class="content">
        <p><strong>{{.ChangedBy}}</strong> moved <strong>{{.DocumentName}}</strong> in {{.ProjectName}}.</p>
        <div class="card">
            <p>{{.OldStatus}} → <strong>{{.NewStatus}}</strong></p>
            {{if .Remarks}}<p><strong>Remarks:</strong> {{.Remarks}}</p>{{end}}
        </div>
        <a href="{{.ProjectURL}}" class="btn">View Document</a>
    </div>` + layoutFoot))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("[Email] Email not configured, skipping send")
		return nil
	}

	msg := s.buildMessage(email)

	// Build recipient list
	recipients := append(append([]string{}, email.To...), email.CC...)
	recipients = append(recipients, email.BCC...)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}
		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}
		for _, rcpt := range recipients {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}
		if _, err = w.Write(msg); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("close error: %w", err)
		}
		return client.Quit()
	}

	return smtp.SendMail(addr, auth, s.config.From, recipients, msg)
}

func (s *Service) buildMessage(email *Email) []byte {
	var msg bytes.Buffer

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(email.Body)
	}
	return msg.Bytes()
}

// Render executes a named template.
func (s *Service) Render(templateName string, data interface{}) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	body, err := s.Render(templateName, data)
	if err != nil {
		return err
	}

	email := &Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body,
	}
	if s.queue != nil {
		s.queue.Enqueue(email)
		return nil
	}
	return s.Send(email)
}

func (s *Service) link(path string) string {
	base := strings.TrimRight(s.config.FrontendURL, "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	return base + path
}

// ============================================
// Convenience Methods
// ============================================

// ProjectInvitationData holds data for project invitation email
type ProjectInvitationData struct {
	InviteeName string
	InviterName string
	ProjectName string
	Role        string
	Assignments string
	Token       string
	ExpiresAt   string
	InviteURL   string
}

// SendProjectInvitation sends a project invitation email
func (s *Service) SendProjectInvitation(to string, data ProjectInvitationData) error {
	if data.InviterName == "" {
		data.InviterName = "Someone"
	}
	if data.InviteURL == "" {
		data.InviteURL = s.link("/invite?token=" + data.Token)
	}
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[Fabtrack] Invitation to join project %s", data.ProjectName),
		"project_invitation",
		data,
	)
}

// ReminderDocument is one row of a review reminder.
type ReminderDocument struct {
	SrNo         string
	DocumentName string
	Status       string
	Age          string
}

// VDCRReminderData holds data for the review reminder email
type VDCRReminderData struct {
	RecipientName string
	ProjectID     string
	ProjectName   string
	Documents     []ReminderDocument
	ProjectURL    string
}

// SendVDCRReminder sends the daily list of documents stuck in review
func (s *Service) SendVDCRReminder(to string, data VDCRReminderData) error {
	if data.ProjectURL == "" {
		data.ProjectURL = s.link("/projects/" + data.ProjectID + "/vdcr")
	}
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[Fabtrack] %d document(s) awaiting review in %s", len(data.Documents), data.ProjectName),
		"vdcr_reminder",
		data,
	)
}

// VDCRStatusChangedData holds data for a status change email
type VDCRStatusChangedData struct {
	ChangedBy    string
	ProjectID    string
	ProjectName  string
	DocumentName string
	OldStatus    string
	NewStatus    string
	Remarks      string
	ProjectURL   string
}

// SendVDCRStatusChanged sends a status change email
func (s *Service) SendVDCRStatusChanged(to string, data VDCRStatusChangedData) error {
	if data.ProjectURL == "" {
		data.ProjectURL = s.link("/projects/" + data.ProjectID + "/vdcr")
	}
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[Fabtrack] %s is now %s", data.DocumentName, data.NewStatus),
		"vdcr_status_changed",
		data,
	)
}

// ============================================
// Email Queue
// ============================================

// EmailQueue sends mail on background workers with a small retry budget.
type EmailQueue struct {
	service *Service
	queue   chan *queuedEmail
	done    chan struct{}
	wg      sync.WaitGroup
	send    func(*Email) error
}

type queuedEmail struct {
	email   *Email
	retries int
}

// NewEmailQueue creates a new email queue
func NewEmailQueue(service *Service, workers int) *EmailQueue {
	q := &EmailQueue{
		service: service,
		queue:   make(chan *queuedEmail, 1000),
		done:    make(chan struct{}),
		send:    service.Send,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}

	return q
}

func (q *EmailQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case item := <-q.queue:
			if err := q.send(item.email); err != nil {
				log.Printf("[Email] ❌ send error (%s): %v", item.email.Subject, err)
				if item.retries < 3 {
					item.retries++
					select {
					case <-time.After(time.Second * time.Duration(item.retries*2)):
						q.requeue(item)
					case <-q.done:
						return
					}
				}
			}
		case <-q.done:
			return
		}
	}
}

func (q *EmailQueue) requeue(item *queuedEmail) {
	select {
	case q.queue <- item:
	default:
		log.Printf("[Email] ⚠️ queue full, dropping %s", item.email.Subject)
	}
}

// Enqueue adds an email to the queue
func (q *EmailQueue) Enqueue(email *Email) {
	q.requeue(&queuedEmail{email: email})
}

// Stop stops the email queue workers
func (q *EmailQueue) Stop() {
	close(q.done)
	q.wg.Wait()
}

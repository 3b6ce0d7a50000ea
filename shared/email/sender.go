package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/TradersPost/pinescript-agents/internal/models"
	"github.com/TradersPost/pinescript-agents/shared/config"
)

//go:embed analysis_template.html
var analysisTemplate string

var tmpl = template.Must(template.New("analysis").Funcs(template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
}).Parse(analysisTemplate))

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config   *config.EmailConfig
	sendMail sendMailFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config:   cfg,
		sendMail: smtp.SendMail,
	}
}

// SendAnalysis mails a finished analysis and where it was saved.
func (s *Sender) SendAnalysis(result *models.AnalysisResult, savedTo string) error {
	if result == nil || result.DetailedSpec == nil {
		return fmt.Errorf("analysis result cannot be empty")
	}

	spec := result.DetailedSpec
	subject := fmt.Sprintf("Pine Script Spec Ready - %s (%s, complexity %d/10)",
		spec.VideoSource.Title, spec.DetectedType, spec.ComplexityScore)

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Result  *models.AnalysisResult
		Spec    *models.PineScriptSpec
		SavedTo string
	}{result, spec, savedTo})
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, buf.String())
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)
	}

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return s.sendMail(addr, auth, s.config.FromEmail, to, msg)
}

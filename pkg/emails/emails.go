package emails

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmlTmpl "html/template"
	txtTmpl "text/template"

	"github.com/getsentry/sentry-go"
	"github.com/socialfeed/server/pkg/config"
	"github.com/socialfeed/server/pkg/logger"
	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

const (
	TmplPostRemoved   = "post_removed"
	TmplSecurityAlert = "security_alert"
)

var ErrUnknownTemplate = errors.New("unknown email template")

var emailSubjects = map[string]string{
	TmplPostRemoved:   "Your post was removed",
	TmplSecurityAlert: "Security alert",
}

//go:embed templates
var templates embed.FS

type EmailTmplVars struct {
	PlatformName     string
	PlatformFrontend string
	PlatformSupport  string

	Subject   string
	ToName    string
	ToAddress string
	Data      map[string]string
}

// Mailer renders the embedded templates and sends them over SMTP. A Mailer
// without an SMTP host logs instead of sending.
type Mailer struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

var Default = New(config.EmailConfig{})

func Init(cfg config.EmailConfig) {
	Default = New(cfg)
}

func New(cfg config.EmailConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	if cfg.SmtpHost != "" {
		m.dialer = gomail.NewDialer(cfg.SmtpHost, cfg.SmtpPort, cfg.SmtpUsername, cfg.SmtpPassword)
	}
	return m
}

func (m *Mailer) Enabled() bool {
	return m.dialer != nil
}

// Render returns the plain text and HTML bodies of a template.
func (m *Mailer) Render(tmplName string, vars EmailTmplVars) (string, string, error) {
	if _, ok := emailSubjects[tmplName]; !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, tmplName)
	}

	var txtBuf, htmlBuf bytes.Buffer
	tt, err := txtTmpl.ParseFS(templates, "templates/base.txt", "templates/"+tmplName+".txt")
	if err != nil {
		return "", "", err
	}
	if err := tt.ExecuteTemplate(&txtBuf, "base", &vars); err != nil {
		return "", "", err
	}
	ht, err := htmlTmpl.ParseFS(templates, "templates/base.html", "templates/"+tmplName+".html")
	if err != nil {
		return "", "", err
	}
	if err := ht.ExecuteTemplate(&htmlBuf, "base", &vars); err != nil {
		return "", "", err
	}

	return txtBuf.String(), htmlBuf.String(), nil
}

// Message builds the full message without sending it.
func (m *Mailer) Message(tmplName, toName, toAddress string, data map[string]string) (*gomail.Message, error) {
	vars := EmailTmplVars{
		PlatformName:     m.cfg.PlatformName,
		PlatformFrontend: m.cfg.PlatformFrontend,
		PlatformSupport:  m.cfg.PlatformSupport,

		Subject:   emailSubjects[tmplName],
		ToName:    toName,
		ToAddress: toAddress,
		Data:      data,
	}
	txtBody, htmlBody, err := m.Render(tmplName, vars)
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromAddress, m.cfg.FromName)
	msg.SetAddressHeader("To", toAddress, toName)
	msg.SetHeader("Subject", vars.Subject)
	msg.SetBody("text/plain", txtBody)
	msg.AddAlternative("text/html", htmlBody)
	return msg, nil
}

func (m *Mailer) Send(tmplName, toName, toAddress string, data map[string]string) error {
	msg, err := m.Message(tmplName, toName, toAddress, data)
	if err != nil {
		return err
	}
	if !m.Enabled() {
		logger.L.Info("email not sent, SMTP is not configured",
			zap.String("template", tmplName),
			zap.String("to", toAddress),
		)
		return nil
	}
	return m.dialer.DialAndSend(msg)
}

// SendEmail sends in the background. Failures are logged and reported.
func SendEmail(tmplName, toName, toAddress string, data map[string]string) {
	if toAddress == "" {
		return
	}
	m := Default
	go func() {
		if err := m.Send(tmplName, toName, toAddress, data); err != nil {
			logger.L.Error("failed sending email",
				zap.String("template", tmplName),
				zap.Error(err),
			)
			sentry.CaptureException(err)
		}
	}()
}

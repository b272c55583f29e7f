package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// ErrEmailNotConfigured is returned when host, username or recipients are missing.
var ErrEmailNotConfigured = errors.New("email not configured")

// SendRunEmail emails a summary of the finished run.
func SendRunEmail(cfg *config.EmailConfig, res types.RunResult) error {
	if err := checkEmail(cfg); err != nil {
		return err
	}
	subject, body := runEmail(res)
	return sendEmail(cfg, subject, body)
}

func runEmail(res types.RunResult) (subject, body string) {
	var tag string
	switch res.Outcome() {
	case types.OutcomeFailed:
		tag = "[FAILED] Render failed"
	case types.OutcomeAborted:
		tag = "[ABORTED] Capture aborted"
	default:
		tag = "[OK] Render completed"
	}
	subject = fmt.Sprintf("%s - %s", tag, res.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "Run:       %s\n", res.RunID)
	fmt.Fprintf(&b, "Name:      %s\n", res.Name)
	fmt.Fprintf(&b, "Encoder:   %s\n", res.Encoder)
	fmt.Fprintf(&b, "Frames:    %d\n", res.Frames)
	fmt.Fprintf(&b, "Duration:  %s\n", res.Elapsed().Round(time.Second))
	if res.Encoded {
		fmt.Fprintf(&b, "Output:    %s\n", res.OutputFile)
		fmt.Fprintf(&b, "Exit code: %d\n", res.ExitCode)
	}
	if res.Error != "" {
		fmt.Fprintf(&b, "Error:     %s\n", res.Error)
	}
	fmt.Fprintf(&b, "Time:      %s", util.HumanTime())
	return subject, b.String()
}

// SendTestEmail sends a test email to verify SMTP configuration.
func SendTestEmail(cfg *config.EmailConfig) error {
	if err := checkEmail(cfg); err != nil {
		return err
	}

	subject := "[TEST] Demo recorder"
	body := fmt.Sprintf(
		"Test email from the demo recorder.\n\n"+
			"Time: %s\n\n"+
			"SMTP configuration is working correctly.",
		util.HumanTime(),
	)

	return sendEmail(cfg, subject, body)
}

func checkEmail(cfg *config.EmailConfig) error {
	if missing := cfg.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrEmailNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// sendEmail delivers an email message to configured recipients.
func sendEmail(cfg *config.EmailConfig, subject, body string) error {
	var recipients []string
	for _, r := range strings.Split(cfg.Recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no valid recipients")
	}

	m := mail.NewMsg()
	if cfg.FromName != "" {
		if err := m.FromFormat(cfg.FromName, cfg.Username); err != nil {
			return util.WrapError("set from address", err)
		}
	} else {
		if err := m.From(cfg.Username); err != nil {
			return util.WrapError("set from address", err)
		}
	}
	if err := m.To(recipients...); err != nil {
		return util.WrapError("set recipient address", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	// Build client options with port-appropriate TLS settings
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}

	switch cfg.Port {
	case 465: // SMTPS - implicit TLS
		opts = append(opts, mail.WithSSL())
	case 587: // Submission - STARTTLS required
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	default: // Port 25 or custom - opportunistic TLS
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return util.WrapError("create SMTP client", err)
	}

	if err := c.DialAndSend(m); err != nil {
		return util.WrapError("send email", err)
	}

	return nil
}

package mailer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/config"
)

// Nop drops mail after logging it; used when MAIL_DRIVER=none.
type Nop struct{ Log logrus.FieldLogger }

func (n Nop) Send(_ context.Context, e Email) error {
	if n.Log != nil {
		n.Log.WithFields(logrus.Fields{"to": e.To, "subject": e.Subject}).Debug("mail driver none: dropped")
	}
	return nil
}

// FromConfig selects the sender for MAIL_DRIVER.
func FromConfig(mail config.MailConfig, smtpCfg config.SMTPConfig, log logrus.FieldLogger) (Service, error) {
	switch mail.Driver {
	case "", "none":
		return Nop{Log: log}, nil
	case "smtp":
		return NewSMTPMailer(smtpCfg), nil
	case "mailtrap":
		return NewMailtrap(mail.MailtrapAPIURL, mail.MailtrapAPIToken), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", mail.Driver)
	}
}

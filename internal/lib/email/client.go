// Package email sends transactional mail through Resend, rendering bodies
// from embedded HTML templates.
package email

import (
	"bytes"

	"github.com/deppfellow/client-directory/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ErrDisabled is returned when no Resend API key is configured.
var ErrDisabled = errors.New("email delivery disabled: no resend api key")

// Client wraps the Resend client and a logger.
type Client struct {
	from   string
	logger *zerolog.Logger

	// send is the delivery call; nil when delivery is disabled.
	send func(*resend.SendEmailRequest) error
}

// NewClient creates an email Client. Without an API key the client still
// renders templates but every send fails with ErrDisabled.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	c := &Client{
		from:   cfg.Integration.EmailFrom,
		logger: logger,
	}

	if cfg.Integration.ResendAPIKey != "" {
		rc := resend.NewClient(cfg.Integration.ResendAPIKey)
		c.send = func(params *resend.SendEmailRequest) error {
			_, err := rc.Emails.Send(params)
			return err
		}
	}

	return c
}

// Enabled reports whether the client can deliver mail.
func (c *Client) Enabled() bool {
	return c.send != nil
}

func render(name Template, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}

// SendEmail renders templateName with data and sends it to a single recipient.
func (c *Client) SendEmail(to, subject string, templateName Template, data any) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	html, err := render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if err := c.send(params); err != nil {
		return errors.Wrapf(err, "failed to send %s email", templateName)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("to", to).
		Msg("email sent")

	return nil
}

package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/hako/durafmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/share"
)

const dedupPeriod = 24 * time.Hour

type Service struct {
	store       notificationStore
	mail        mailer
	domain      string
	appName     string
	templateDir string
}

func New(c *cli.Context, pg *cs.PG) *Service {
	return &Service{
		store: &pgNotificationStore{pg: pg},
		mail: &smtpMailer{
			host:   c.String(common.SMTPHostFlag),
			port:   c.Int(common.SMTPPortFlag),
			user:   c.String(common.SMTPUserFlag),
			pass:   c.String(common.SMTPPassFlag),
			secure: c.BoolT(common.SMTPSecureFlag),
		},
		domain:      common.TrimDomain(c.String(common.DomainFlag)),
		appName:     c.String(common.AppNameFlag),
		templateDir: "templates/notification",
	}
}

type SendOptions struct {
	Kind     models.NotificationKind
	To       string
	Key      string
	Title    string
	Template string
	Data     any
}

func (s *Service) Send(ctx context.Context, opts SendOptions) error {
	// 1. Check for duplicates in the last 24 hours
	last, err := s.store.GetLastByKeyAndTo(ctx, opts.Key, opts.To)
	if err != nil {
		return errors.Wrap(err, "failed to check for duplicate notification")
	}
	if last != nil && time.Since(last.CreatedAt) < dedupPeriod {
		log.WithFields(log.Fields{
			"key": opts.Key,
			"to":  opts.To,
		}).Info("duplicate notification, skipping")
		return nil
	}

	// 2. Render template
	body, err := s.render(opts.Template, opts.Data)
	if err != nil {
		return errors.Wrap(err, "failed to render notification template")
	}

	// 3. Save to DB
	n := &models.Notification{
		Kind:     opts.Kind,
		Key:      opts.Key,
		Subject:  opts.Title,
		Template: opts.Template,
		Body:     body,
		To:       opts.To,
	}
	err = s.store.Create(ctx, n)
	if err != nil {
		return errors.Wrap(err, "failed to save notification to db")
	}

	err = s.mail.Send(opts.To, opts.Title, body)
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	return nil
}

func (s *Service) render(templateName string, data any) (string, error) {
	path := filepath.Join(s.templateDir, templateName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("template not found: %s", path)
	}

	t, err := template.ParseFiles(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}

	return buf.String(), nil
}

func (s *Service) SendWelcome(ctx context.Context, to string, name string) error {
	opts := SendOptions{
		Kind:     models.NotificationKindWelcome,
		To:       to,
		Key:      "welcome",
		Title:    fmt.Sprintf("Welcome to %s, %s!", s.appName, name),
		Template: "welcome.html",
		Data: map[string]any{
			"Name":    name,
			"AppName": s.appName,
			"Domain":  s.domain,
		},
	}
	return s.Send(ctx, opts)
}

func (s *Service) SendPublished(ctx context.Context, to string, name string, t *models.Title) error {
	var runtime string
	if t.Duration > 0 {
		runtime = durafmt.Parse(time.Duration(t.Duration) * time.Minute).LimitFirstN(2).String()
	}
	opts := SendOptions{
		Kind:     models.NotificationKindPublished,
		To:       to,
		Key:      fmt.Sprintf("published-%s", t.TitleID),
		Title:    fmt.Sprintf("Your upload %s is live!", t.Title),
		Template: "published.html",
		Data: map[string]any{
			"Name":    name,
			"Title":   t.Title,
			"Runtime": runtime,
			"URL":     share.CanonicalURL(s.domain, t.TitleID),
			"AppName": s.appName,
			"Domain":  s.domain,
		},
	}
	return s.Send(ctx, opts)
}

package common

import (
	"net/url"
	"strings"

	"github.com/urfave/cli"
)

var (
	DomainFlag        = "domain"
	AppNameFlag       = "app-name"
	SMTPHostFlag      = "smtp-host"
	SMTPUserFlag      = "smtp-user"
	SMTPPassFlag      = "smtp-pass"
	SMTPPortFlag      = "smtp-port"
	SMTPSecureFlag    = "smtp-secure"
	SessionSecretFlag = "secret"
)

// DefaultSessionSecret is only good for local development.
const DefaultSessionSecret = "secret123"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	f = append(f,
		cli.StringFlag{
			Name:   DomainFlag,
			Usage:  "public domain used for share and download links",
			Value:  "https://netcine.app",
			EnvVar: "DOMAIN",
		},
		cli.StringFlag{
			Name:   AppNameFlag,
			Usage:  "application name shown in share texts and e-mails",
			Value:  "NETCINE",
			EnvVar: "APP_NAME",
		},
		cli.StringFlag{
			Name:   SMTPHostFlag,
			Usage:  "smtp host",
			EnvVar: "SMTP_HOST",
		},
		cli.StringFlag{
			Name:   SMTPUserFlag,
			Usage:  "smtp user",
			EnvVar: "SMTP_USER",
		},
		cli.StringFlag{
			Name:   SMTPPassFlag,
			Usage:  "smtp pass",
			EnvVar: "SMTP_PASS",
		},
		cli.IntFlag{
			Name:   SMTPPortFlag,
			Usage:  "smtp port",
			EnvVar: "SMTP_PORT",
			Value:  465,
		},
		cli.BoolTFlag{
			Name:   SMTPSecureFlag,
			Usage:  "smtp secure",
			EnvVar: "SMTP_SECURE",
		},
		cli.StringFlag{
			Name:   SessionSecretFlag,
			Usage:  "session secret",
			Value:  DefaultSessionSecret,
			EnvVar: "SESSION_SECRET",
		},
	)

	return f
}

// EscapePath escapes every segment of a slash separated path.
func EscapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// TrimDomain strips a trailing slash so links can be joined with a leading one.
func TrimDomain(domain string) string {
	return strings.TrimSuffix(domain, "/")
}

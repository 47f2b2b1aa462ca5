package web

import (
	"time"

	"github.com/urfave/cli"

	"github.com/netcine/web-ui/services/common"
)

type Helper struct {
	domain  string
	appName string
}

func NewHelper(c *cli.Context) *Helper {
	return &Helper{
		domain:  common.TrimDomain(c.String(common.DomainFlag)),
		appName: c.String(common.AppNameFlag),
	}
}

func (s *Helper) Domain() string {
	return s.domain
}

func (s *Helper) AppName() string {
	return s.appName
}

func (s *Helper) Year() int {
	return time.Now().Year()
}

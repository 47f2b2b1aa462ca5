package main

import (
	"context"
	"net/http"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	wau "github.com/netcine/web-ui/handlers/auth"
	"github.com/netcine/web-ui/handlers/download"
	wi "github.com/netcine/web-ui/handlers/index"
	"github.com/netcine/web-ui/handlers/poster"
	"github.com/netcine/web-ui/handlers/sitemap"
	wsh "github.com/netcine/web-ui/handlers/share"
	wup "github.com/netcine/web-ui/handlers/upload"
	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/auth"
	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/migration"
	"github.com/netcine/web-ui/services/notification"
	"github.com/netcine/web-ui/services/share"
	"github.com/netcine/web-ui/services/storage"
	"github.com/netcine/web-ui/services/template"
	"github.com/netcine/web-ui/services/upload"
	ua "github.com/netcine/web-ui/services/url_alias"
	"github.com/netcine/web-ui/services/view"
	w "github.com/netcine/web-ui/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterS3ClientFlags(c.Flags)
	c.Flags = cs.RegisterRedisClientFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = common.RegisterFlags(c.Flags)
	c.Flags = auth.RegisterFlags(c.Flags)
	c.Flags = catalog.RegisterFlags(c.Flags)
	c.Flags = storage.RegisterFlags(c.Flags)
	c.Flags = upload.RegisterFlags(c.Flags)
	c.Flags = download.RegisterFlags(c.Flags)
	c.Flags = poster.RegisterFlags(c.Flags)
	c.Flags = migration.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := runPGMigration(c, pg)
	if err != nil {
		return err
	}

	// Setting Redis
	redis := cs.NewRedisClient(c)
	defer redis.Close()

	// Setting S3 Client
	s3Cl := cs.NewS3Client(c, cl)

	// Setting template renderer
	re := multitemplate.NewRenderer()

	// Setting TemplateManager
	tm := template.NewManager[*w.Context](re).
		WithHelper(w.NewHelper(c)).
		WithHelper(view.NewHelper())

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false
	r.HTMLRender = re
	r.Static("/assets", "assets")

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting URL Alias
	ual := ua.New(pg)
	ual.RegisterHandler(r)

	// Setting Session
	err = w.RegisterSession(c, r)
	if err != nil {
		return err
	}

	// Setting Auth
	a := auth.New(c, pg, redis.Get())
	a.RegisterHandler(r)

	// Setting Catalog
	cat := catalog.NewStore(c, pg, redis.Get())

	// Setting Notification
	ns := notification.New(c, pg)

	// Setting Storage
	st := storage.New(c, s3Cl)

	// Setting Uploads
	uploads := upload.NewRegistry(c, st, cat, func(o upload.Owner, t *models.Title) {
		go notifyPublished(ns, o, t)
	})
	defer uploads.CloseAll()

	// Setting Shares
	shares := share.NewRegistry(c)
	defer shares.CloseAll()

	// Setting AuthHandler
	wau.RegisterHandler(r, ns)

	// Setting IndexHandler
	wi.RegisterHandler(r, tm, cat, uploads, shares, ual)

	// Setting UploadHandler
	wup.RegisterHandler(r, uploads)

	// Setting ShareHandler
	wsh.RegisterHandler(r, cat, cat, shares)

	// Setting DownloadHandler
	download.RegisterHandler(c, r, cat, cat, st)

	// Setting PosterHandler
	poster.RegisterHandler(c, r, cat, cl, s3Cl)

	// Setting Sitemap
	sitemap.RegisterHandler(c, r, cat)

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}

func notifyPublished(ns *notification.Service, o upload.Owner, t *models.Title) {
	err := ns.SendPublished(context.Background(), o.Email, o.Name, t)
	if err != nil {
		log.WithError(err).
			WithField("title_id", t.TitleID).
			Warn("failed to send published notification")
	}
}

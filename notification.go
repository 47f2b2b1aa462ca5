package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/migration"
	"github.com/netcine/web-ui/services/notification"
)

const titleIDFlag = "title-id"

func makeNotificationCMD() cli.Command {
	notificationCMD := cli.Command{
		Name:    "notification",
		Aliases: []string{"n"},
		Usage:   "Notification management commands",
	}
	configureNotification(&notificationCMD)
	return notificationCMD
}

func configureNotification(c *cli.Command) {
	publishedCmd := cli.Command{
		Name:    "published",
		Aliases: []string{"p"},
		Usage:   "Sends the upload published notification to the uploader of a title",
		Action:  sendPublishedNotification,
	}
	configureNotificationSend(&publishedCmd)
	c.Subcommands = []cli.Command{publishedCmd}
}

func configureNotificationSend(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = common.RegisterFlags(c.Flags)
	c.Flags = migration.RegisterFlags(c.Flags)
	c.Flags = append(c.Flags, cli.StringFlag{
		Name:  titleIDFlag,
		Usage: "id of the published title",
	})
}

func sendPublishedNotification(c *cli.Context) error {
	ctx := context.Background()
	id := c.String(titleIDFlag)
	if id == "" {
		return errors.Errorf("--%v is required", titleIDFlag)
	}

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := runPGMigration(c, pg)
	if err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	db := pg.Get()
	if db == nil {
		return errors.New("db is nil")
	}

	t, err := models.GetTitleByID(ctx, db, id)
	if err != nil {
		return err
	}
	if t == nil {
		return errors.Errorf("title %v not found", id)
	}
	if t.UploadedBy == nil {
		return errors.Errorf("title %v has no uploader", id)
	}
	u, err := models.GetUserByID(ctx, db, *t.UploadedBy)
	if err != nil {
		return err
	}
	if u == nil {
		return errors.Errorf("uploader of title %v not found", id)
	}

	// Setting Notification
	ns := notification.New(c, pg)

	err = ns.SendPublished(ctx, u.Email, u.Name, t)
	if err != nil {
		return errors.Wrap(err, "failed to send published notification")
	}
	log.WithFields(log.Fields{
		"title_id": t.TitleID,
		"email":    u.Email,
	}).Info("published notification sent")
	return nil
}

package main

import (
	"github.com/urfave/cli"
)

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	migrationCMD := makePGMigrationCMD()
	catalogCMD := makeCatalogCMD()
	notificationCMD := makeNotificationCMD()
	app.Commands = []cli.Command{serveCMD, migrationCMD, catalogCMD, notificationCMD}
}

package main

import (
	"os"
	"sort"

	"stocktracker-backend/bootstrap"
	"stocktracker-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	var db *gorm.DB

	app := &cli.App{
		Name:    "stockctl",
		Usage:   "stock tracker operator tool",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Usage:   "SQLite file or postgres:// DSN",
				EnvVars: []string{"DATABASE_URL"},
				Value:   "stocks.db",
			},
			&cli.StringFlag{
				Name:    "loglevel",
				Aliases: []string{"l"},
				Usage:   "log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			bootstrap.SetupLogging(c.String("loglevel"), false)
			var err error
			db, err = database.Open(c.String("database-url"))
			return err
		},
		After: func(c *cli.Context) error {
			if db == nil {
				return nil
			}
			if sqlDB, err := db.DB(); err == nil {
				return sqlDB.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or update the schema",
				Action: func(c *cli.Context) error {
					return migrate(db)
				},
			},
			{
				Name:  "ingest",
				Usage: "load quotes from a JSON seed file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "seed file path", Required: true},
				},
				Action: func(c *cli.Context) error {
					_, err := ingest(c.Context, db, c.String("file"))
					return err
				},
			},
			{
				Name:  "create-admin",
				Usage: "create an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"ADMIN_PASSWORD"}, Required: true},
				},
				Action: func(c *cli.Context) error {
					_, err := createAdmin(c.Context, db, c.String("username"), c.String("email"), c.String("password"))
					return err
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("stockctl")
	}
}

// Command migrate applies the SQL migrations under migrations/ to the task database.
//
//	DATABASE_URL='mysql://root:pw@tcp(127.0.0.1:3306)/todo_api' go run ./cmd/migrate up
//
// When DATABASE_URL is unset the URL is built from the DB_* variables the
// server reads, .env included.
package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"TodoWebService/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.New()

func main() {
	log.SetFormatter(&logrus.JSONFormatter{})
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "migrate",
		Usage: "apply the TodoWebService schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Usage:   "golang-migrate database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "path",
				Usage:   "directory holding the *.up.sql and *.down.sql files",
				Value:   "./migrations",
				EnvVars: []string{"MIGRATIONS_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: withMigrate(func(c *cli.Context, m *migrate.Migrate) error {
					if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("up: %w", err)
					}
					log.Info("migrations: up completed")
					return nil
				}),
			},
			{
				Name:      "down",
				Usage:     "roll back N migrations",
				ArgsUsage: "[N]",
				Action: withMigrate(func(c *cli.Context, m *migrate.Migrate) error {
					steps := 1
					if c.Args().Present() {
						n, err := strconv.Atoi(c.Args().First())
						if err != nil || n < 1 {
							return fmt.Errorf("down: invalid steps argument %q", c.Args().First())
						}
						steps = n
					}
					if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("down: %w", err)
					}
					log.WithField("steps", steps).Info("migrations: down completed")
					return nil
				}),
			},
			{
				Name:  "version",
				Usage: "print the current migration version",
				Action: withMigrate(func(c *cli.Context, m *migrate.Migrate) error {
					v, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Fprintln(c.App.Writer, "version: none")
						return nil
					}
					if err != nil {
						return fmt.Errorf("version: %w", err)
					}
					fmt.Fprintf(c.App.Writer, "version: %d  dirty: %v\n", v, dirty)
					return nil
				}),
			},
			{
				Name:      "force",
				Usage:     "set the migration version without running migrations",
				ArgsUsage: "V",
				Action: withMigrate(func(c *cli.Context, m *migrate.Migrate) error {
					v, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return fmt.Errorf("force: invalid version %q", c.Args().First())
					}
					if err := m.Force(v); err != nil {
						return fmt.Errorf("force: %w", err)
					}
					log.WithField("version", v).Info("migrations: forced")
					return nil
				}),
			},
		},
	}
}

func withMigrate(fn func(*cli.Context, *migrate.Migrate) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		dbURL := c.String("database")
		if dbURL == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dbURL = databaseURL(cfg)
		}
		m, err := migrate.New("file://"+c.String("path"), dbURL)
		if err != nil {
			return fmt.Errorf("migration init failed: %w", err)
		}
		defer m.Close()
		m.Log = migrateLogger{}
		return fn(c, m)
	}
}

// databaseURL is the golang-migrate form of the server's MySQL settings.
// The migrate driver query-unescapes user and password, so both are escaped
// to keep '@', '/', ':' and '?' from splitting the DSN.
func databaseURL(cfg *config.Config) string {
	dsn := cfg.MySQL()
	dsn.User = url.QueryEscape(dsn.User)
	dsn.Passwd = url.QueryEscape(dsn.Passwd)
	dsn.MultiStatements = true
	return "mysql://" + dsn.FormatDSN()
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) { log.Infof(format, v...) }
func (migrateLogger) Verbose() bool                  { return false }

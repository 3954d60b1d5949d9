package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/yourusername/event-invoicer/config"
	"github.com/yourusername/event-invoicer/handlers"
	"github.com/yourusername/event-invoicer/invoicing"
	"github.com/yourusername/event-invoicer/migrations"
	"github.com/yourusername/event-invoicer/store"
	"github.com/yourusername/event-invoicer/utils"
	"gorm.io/gorm"
)

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Usage:   "invoice browser password",
		EnvVars: []string{"INVOICE_BROWSER_PASSWORD"},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "event-invoicer",
		Usage: "create, store and print event invoices",

		// item descriptions may contain commas
		DisableSliceFlagSeparator: true,

		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "bring the invoice database schema up to date",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rollback-last", Usage: "undo the most recent migration instead"},
				},
				Action: migrate,
			},
			{
				Name:  "create",
				Usage: "save an invoice and render its PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Value: time.Now().Format("2006-01-02"), Usage: "event date"},
					&cli.StringFlag{Name: "venue"},
					&cli.StringFlag{Name: "customer", Usage: "customer name"},
					&cli.StringFlag{Name: "phone", Usage: "customer phone"},
					&cli.StringFlag{Name: "paid", Usage: "amount already paid"},
					&cli.StringSliceFlag{Name: "item", Usage: `line item as "name|description|price|quantity", repeatable`},
				},
				Action: create,
			},
			{
				Name:   "list",
				Usage:  "list saved invoices",
				Flags:  []cli.Flag{passwordFlag()},
				Action: list,
			},
			{
				Name:      "render",
				Usage:     "regenerate the duplicate PDF of a saved invoice",
				ArgsUsage: "<invoice id>",
				Flags:     []cli.Flag{passwordFlag()},
				Action:    renderDuplicate,
			},
			{
				Name:      "hash-password",
				Usage:     "print the bcrypt hash to use as BROWSER_PASSWORD_HASH",
				ArgsUsage: "<password>",
				Action:    hashPassword,
			},
		},
	}
}

type appEnv struct {
	cfg     *config.Config
	logger  *logrus.Logger
	db      *gorm.DB
	service *invoicing.Service
}

func (r *appEnv) Close() {
	if err := config.CloseDB(r.db); err != nil {
		r.logger.WithError(err).Warn("closing database")
	}
}

// setup loads config, opens the database and builds the service. The server
// logs JSON to stdout; other commands log text to stderr so their output stays
// clean.
func setup(serving bool) (*appEnv, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := commandLogger(cfg, serving)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}

	service, err := invoicing.NewService(store.New(db), cfg, logger)
	if err != nil {
		config.CloseDB(db)
		return nil, err
	}
	return &appEnv{cfg: cfg, logger: logger, db: db, service: service}, nil
}

func commandLogger(cfg *config.Config, serving bool) *logrus.Logger {
	if serving {
		return utils.NewLogger(os.Stdout, cfg.LogLevel, true)
	}
	return utils.NewLogger(os.Stderr, cfg.LogLevel, false)
}

func serve(cCtx *cli.Context) error {
	rt, err := setup(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.cfg.RequireBrowserAuth(); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(rt.cfg, rt.service, rt.logger)

	rt.logger.WithField("port", rt.cfg.Port).Info("starting invoice API")
	return router.Run(":" + rt.cfg.Port)
}

func migrate(cCtx *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := commandLogger(cfg, false)

	if cCtx.Bool("rollback-last") {
		db, err := config.OpenDB(cfg)
		if err != nil {
			return err
		}
		defer config.CloseDB(db)

		if err := migrations.RollbackLast(db); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		logger.Info("rolled back last migration")
		return nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer config.CloseDB(db)
	logger.WithField("version", migrations.Latest()).Info("schema up to date")
	return nil
}

func create(cCtx *cli.Context) error {
	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	draft := &invoicing.Draft{
		Date:          cCtx.String("date"),
		Venue:         cCtx.String("venue"),
		CustomerName:  cCtx.String("customer"),
		CustomerPhone: cCtx.String("phone"),
		PaidAmount:    cCtx.String("paid"),
	}
	for _, raw := range cCtx.StringSlice("item") {
		name, description, price, quantity, err := splitItem(raw)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		if _, err := draft.AddItem(name, description, price, quantity); err != nil {
			return cli.Exit(fmt.Sprintf("item %q: %v", raw, err), 2)
		}
	}

	invoice, path, err := rt.service.Save(cCtx.Context, draft)
	if isUserError(err) {
		return cli.Exit(err.Error(), 2)
	}
	out := cCtx.App.Writer
	if err != nil && invoice != nil {
		fmt.Fprintf(out, "Invoice %d saved but the PDF could not be written\n", invoice.ID)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Invoice %d saved: total %s, paid %s, remaining %s (%s)\n",
		invoice.ID,
		invoice.TotalAmount.StringFixed(2),
		invoice.PaidAmount.StringFixed(2),
		invoice.RemainingAmount.StringFixed(2),
		invoice.PaidStatus)
	fmt.Fprintf(out, "PDF written to %s\n", path)
	return nil
}

func list(cCtx *cli.Context) error {
	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := checkPassword(rt.cfg, cCtx.String("password")); err != nil {
		return err
	}

	invoices, err := rt.service.List(cCtx.Context)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cCtx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tVENUE\tCUSTOMER\tPHONE\tTOTAL\tPAID\tREMAINING\tSTATUS")
	for _, inv := range invoices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID, inv.Date, inv.Venue, inv.CustomerName, inv.CustomerPhone,
			inv.TotalAmount.StringFixed(2), inv.PaidAmount.StringFixed(2),
			inv.RemainingAmount.StringFixed(2), inv.PaidStatus)
	}
	return w.Flush()
}

func renderDuplicate(cCtx *cli.Context) error {
	id, err := strconv.ParseUint(cCtx.Args().First(), 10, 64)
	if err != nil || id == 0 {
		return cli.Exit("usage: render <invoice id>", 2)
	}

	rt, err := setup(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := checkPassword(rt.cfg, cCtx.String("password")); err != nil {
		return err
	}

	_, path, err := rt.service.Regenerate(cCtx.Context, uint(id))
	if errors.Is(err, store.ErrInvoiceNotFound) {
		return cli.Exit(err.Error(), 1)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cCtx.App.Writer, "PDF file has been generated: %s\n", path)
	return nil
}

func hashPassword(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("usage: hash-password <password>", 2)
	}
	hash, err := utils.HashPassword(cCtx.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintln(cCtx.App.Writer, hash)
	return nil
}

func checkPassword(cfg *config.Config, password string) error {
	if cfg.BrowserPasswordHash == "" {
		return cli.Exit("BROWSER_PASSWORD_HASH is not set", 1)
	}
	if !utils.CheckPassword(cfg.BrowserPasswordHash, password) {
		return cli.Exit("Incorrect password", 1)
	}
	return nil
}

// splitItem reads "name|description|price|quantity". The description may
// itself contain '|'.
func splitItem(raw string) (name, description, price, quantity string, err error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 4 {
		return "", "", "", "", fmt.Errorf("item %q: want name|description|price|quantity", raw)
	}
	n := len(parts)
	return parts[0], strings.Join(parts[1:n-2], "|"), parts[n-2], parts[n-1], nil
}

func isUserError(err error) bool {
	return errors.Is(err, invoicing.ErrInvalidNumber) ||
		errors.Is(err, invoicing.ErrMissingFields) ||
		errors.Is(err, invoicing.ErrNoItems)
}

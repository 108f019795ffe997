package main

import (
	"context"
	"encoding/json"
	"evcdr/core"
	"evcdr/entity"
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"evcdr/internal"
	"evcdr/internal/config"
	"evcdr/ocpi"
	"evcdr/server"
	"evcdr/utility"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := cli.NewApp()
	app.Name = "evcdr"
	app.Usage = "build OCPI charge detail records from charging sessions"
	app.Commands = []cli.Command{
		{
			Name:  "serve",
			Usage: "run the CDR api server",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config, c", Value: "config.yml", Usage: "configuration file"},
				cli.StringFlag{Name: "locations", Usage: "json file with locations for the in-memory store"},
				cli.StringFlag{Name: "tariffs", Usage: "json file with tariffs for the in-memory store"},
			},
			Action: serve,
		},
		{
			Name:      "build",
			Usage:     "build a CDR from json files and print it",
			ArgsUsage: "<session.json>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "locations", Usage: "json file with locations"},
				cli.StringFlag{Name: "tariffs", Usage: "json file with tariffs"},
				cli.StringFlag{Name: "encoding", Value: "OCMF", Usage: "signed data encoding method"},
				cli.StringFlag{Name: "language", Value: "en", Usage: "language of tariff descriptions"},
			},
			Action: build,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func serve(c *cli.Context) error {
	conf, err := config.GetConfig(c.String("config"))
	if err != nil {
		return err
	}

	logger := internal.NewLogger("CDR")
	if conf.Debug() {
		_ = logger.SetLevel("debug")
	} else if err = logger.SetLevel(conf.Log.Level); err != nil {
		return err
	}
	logger.SetReportCaller(conf.Log.ReportCaller)
	if zone, err := time.LoadLocation(conf.Log.TimeZone); err == nil {
		logger.SetLocation(zone)
	} else {
		logger.Warn(fmt.Sprintf("log time zone %s: %v", conf.Log.TimeZone, err))
	}

	var database internal.Database
	if conf.Mongo.Enabled {
		mongo, err := internal.NewMongoClient(conf)
		if err != nil {
			return fmt.Errorf("mongodb setup failed: %w", err)
		}
		database = mongo
		logger.SetDatabase(mongo)
	} else {
		store, err := loadStore(c.String("locations"), c.String("tariffs"))
		if err != nil {
			return err
		}
		database = store
		logger.SetDatabase(store)
		logger.Warn("mongodb is disabled, using in-memory store")
	}

	builder := core.NewBuilder(database, database,
		core.WithLogger(logger),
		core.WithSignedDataEncoding(conf.Cdr.SignedDataEncoding),
	)
	storage := database
	if !conf.Cdr.Store {
		storage = nil
	}
	service := core.NewService(builder, storage)
	service.SetLogger(logger)

	if conf.Cdr.Push {
		pusher := ocpi.New(conf.Ocpi.Url, conf.Ocpi.Token)
		pusher.SetLogger(logger)
		service.SetPusher(pusher)
	}

	srv := server.NewServer(conf, service, logger)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		<-signals
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown", err)
		}
	}()

	if err = srv.Start(); err != nil {
		logger.Close()
		return err
	}
	<-stopped
	logger.Close()
	return nil
}

func build(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("session file is required", 1)
	}
	store, err := loadStore(c.String("locations"), c.String("tariffs"))
	if err != nil {
		return err
	}
	var session entity.ChargingSession
	if err = utility.ReadJson(c.Args().First(), &session); err != nil {
		return err
	}

	logger := internal.NewLogger("BUILD")
	builder := core.NewBuilder(store, store,
		core.WithLogger(logger),
		core.WithSignedDataEncoding(c.String("encoding")),
	)
	result, err := builder.Build(context.Background(), &session)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	out, err := json.MarshalIndent(result.Cdr, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	for _, t := range result.Cdr.Tariffs {
		fmt.Fprintf(os.Stderr, "tariff %s: %s, base energy price %s/kWh\n",
			t.Id, t.Description(c.String("language")), utility.FormatPrice(t.PricePerKwh(), t.Currency))
	}
	for _, w := range result.Warnings.Strings() {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	return nil
}

// loadStore fills an in-memory store from optional json files
func loadStore(locationsFile, tariffsFile string) (*internal.MemoryStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := internal.NewMemoryStore()
	if locationsFile != "" {
		var locations []*location.Location
		if err := utility.ReadJson(locationsFile, &locations); err != nil {
			return nil, err
		}
		for _, loc := range locations {
			if err := store.SaveLocation(ctx, loc); err != nil {
				return nil, err
			}
		}
	}
	if tariffsFile != "" {
		var tariffs []*tariff.Tariff
		if err := utility.ReadJson(tariffsFile, &tariffs); err != nil {
			return nil, err
		}
		for _, t := range tariffs {
			if err := store.SaveTariff(ctx, t); err != nil {
				return nil, err
			}
		}
	}
	return store, nil
}

package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"pwsarchive/internal/archive"
	"pwsarchive/internal/common"
	"pwsarchive/internal/influx"
	"pwsarchive/internal/wunderground"
)

const flagDateFormat = "2006-01-02"

func main() {
	var stationID = flag.StringP("station-id", "i", "", "Wunderground station ID")
	var startDateFlag = flag.StringP("start-date", "s", "", "start date (yyyy-mm-dd), default is yesterday")
	var endDateFlag = flag.StringP("end-date", "e", "", "end date (yyyy-mm-dd), default is today")
	var outDir = flag.StringP("out-dir", "o", ".", "directory the range table is written to")
	var retryDelay = flag.Duration("retry-delay", 10*time.Second, "wait between attempts on a failing day")
	var httpTimeout = flag.Duration("http-timeout", 0, "timeout for a single request, 0 for none")
	var upload = flag.Bool("upload", false, "pass to upload the collected table to InfluxDB")
	var influxAddr = flag.String("influx-addr", "http://localhost:8086", "InfluxDB HTTP address")
	var influxUser = flag.String("influx-user", "", "InfluxDB username")
	var influxPass = flag.String("influx-password", "", "InfluxDB password")
	var influxDB = flag.String("influx-db", "weather", "InfluxDB database")
	var logLevel = flag.String("log-level", "info", "log level")

	flag.Parse()

	if err := common.InitLogger(*logLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	if *stationID == "" {
		flag.Usage()
		log.Fatal("please specify a station ID")
	}

	if *startDateFlag == "" {
		*startDateFlag = time.Now().AddDate(0, 0, -1).Format(flagDateFormat)
	}
	if *endDateFlag == "" {
		*endDateFlag = time.Now().Format(flagDateFormat)
	}

	startDate, err := time.ParseInLocation(flagDateFormat, *startDateFlag, time.UTC)
	if err != nil {
		log.Fatal(err)
	}
	endDate, err := time.ParseInLocation(flagDateFormat, *endDateFlag, time.UTC)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := wunderground.NewClient(&http.Client{Timeout: *httpTimeout})
	collector := archive.NewCollector(client, archive.RetryPolicy{Delay: *retryDelay}, archive.Dir{Path: *outDir})

	table, err := collector.Collect(ctx, *stationID, startDate, endDate)
	if err != nil {
		log.Fatalf("collection failed: %v", err)
	}

	if !*upload {
		return
	}

	w, err := influx.NewWriter(influx.Config{
		Addr:     *influxAddr,
		Username: *influxUser,
		Password: *influxPass,
		Database: *influxDB,
	})
	if err != nil {
		log.Fatalf("influx: %v", err)
	}
	defer w.Close()

	if err := w.WriteTable(*stationID, table); err != nil {
		log.Fatalf("influx: %v", err)
	}
}

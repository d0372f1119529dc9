package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"

	"github.com/mqy/malicek/auth"
	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/engine"
	"github.com/mqy/malicek/relay"
	"github.com/mqy/malicek/store"
	"github.com/mqy/malicek/transport"
	"github.com/mqy/malicek/ws"
)

const (
	archiveBolt  = "bolt"
	archiveMySQL = "mysql"
	archiveNone  = "none"

	sinkQueueSize = 256

	minTTLDays = 1
	maxTTLDays = 365
)

var (
	flagServer    = flag.String("server", "https://o00o.cz", "chat server base url")
	flagTimeoutMs = flag.Uint("timeout", 5000, "per request timeout in milliseconds")
	flagAddr      = flag.String("addr", "127.0.0.1:8700", "front-end listen address, ip:port")
	flagPidFile   = flag.String("pid-file", "malicek.pid", "pid file")
	flagDataFile  = flag.String("data-file", "malicek.db", "local bbolt file for cookies and the bolt archive")

	flagArchive        = flag.String("archive", archiveBolt, "message archive: bolt, mysql or none")
	flagMysqlDsn       = flag.String("mysql-dsn", "root:@tcp(127.0.0.1:3306)/malicek", "mysql server dsn, used by --archive=mysql")
	flagArchiveTTLDays = flag.Uint("archive-ttl-days", 30, "archived message TTL in days, 0 keeps messages forever")

	flagKafkaBrokers = flag.String("kafka-brokers", "", "comma separated kafka brokers, empty disables the relay")
	flagKafkaTopic   = flag.String("kafka-topic", "malicek-messages", "kafka topic of relayed messages")

	flagDisableMetrics = flag.Bool("disable-metrics", false, "disable prometheus metrics")
	flagConsole        = flag.Bool("console", false, "print updates to stdout and read commands from stdin")
)

func main() {
	flag.Parse()

	// NOTE: os.Exit() does not call defers.
	os.Exit(run())
}

func run() int {
	defer glog.Flush()

	if v := validateFlags(); v > 0 {
		return v
	}

	pid := os.Getpid()
	if err := savePid(*flagPidFile, pid); err != nil {
		return errorf("pid file: %v", err)
	}
	defer func() {
		_ = os.Remove(*flagPidFile)
	}()

	db, err := bbolt.Open(*flagDataFile, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return errorf("open data file `%s`: %v", *flagDataFile, err)
	}
	defer db.Close()

	base, _ := url.Parse(*flagServer)
	jar, err := store.NewJar(db, base)
	if err != nil {
		return errorf("cookie jar: %v", err)
	}

	tr, err := transport.New(*flagServer, time.Duration(*flagTimeoutMs)*time.Millisecond, jar)
	if err != nil {
		return errorf("--server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archive, err := openArchive(ctx, db)
	if err != nil {
		return errorf("archive: %v", err)
	}

	glog.Infof("malicek is starting, server: %s", *flagServer)

	var (
		sinks    chat.Sinks
		runners  []func(context.Context, chan<- struct{})
		archSink *store.ArchiveSink
	)

	hub := ws.NewHub(nil, archive)
	sinks = append(sinks, hub)
	runners = append(runners, hub.Run)

	if archive != nil {
		archSink = store.NewArchiveSink(archive, sinkQueueSize, int32(*flagArchiveTTLDays))
		sinks = append(sinks, archSink)
		runners = append(runners, archSink.Run)
	}

	if *flagKafkaBrokers != "" {
		writer := relay.NewKafkaWriter(strings.Split(*flagKafkaBrokers, ","), *flagKafkaTopic)
		r := relay.New(writer, sinkQueueSize, relay.DefaultMaxBytes)
		sinks = append(sinks, r)
		runners = append(runners, r.Run)
	}

	var console *consoleSink
	if *flagConsole {
		console = newConsoleSink(os.Stdout)
		sinks = append(sinks, console)
	}

	conf := engine.DefaultConfig()
	conf.QuietPeriod = tr.Timeout()
	ctl := engine.NewController(conf, tr, auth.NewHTTPClient(tr), jar, sinks)
	hub.SetCommander(ctl)

	mux := http.NewServeMux()
	if !*flagDisableMetrics {
		mux.Handle("/metrics", promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{},
		))
	}
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: *flagAddr, Handler: mux}

	stopNotifyChan := make(chan struct{}, len(runners))
	for _, fn := range runners {
		go fn(ctx, stopNotifyChan)
	}

	go func() {
		glog.Infof("front-end listening on %s", *flagAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("http server: %v", err)
		}
	}()

	if err := ctl.Start(ctx); err != nil {
		return errorf("start: %v", err)
	}

	if console != nil {
		go console.readCommands(ctx, os.Stdin, ctl, archive)
	}

	glog.Infof("`CTRL+c` or `kill %d` to graceful stop", pid)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	signal.Stop(sigCh)
	glog.Infof("received signal `%s` stopping", sig.String())

	// stop producing before the sinks go away
	ctl.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("http server shutdown: %v", err)
	}

	cancel()
	for range runners {
		<-stopNotifyChan
	}

	glog.Info("malicek exited")
	return 0
}

func openArchive(ctx context.Context, db *bbolt.DB) (store.IArchive, error) {
	switch *flagArchive {
	case archiveBolt:
		return store.NewBoltArchive(db)
	case archiveMySQL:
		dsn, err := store.ParseDSN(*flagMysqlDsn)
		if err != nil {
			return nil, err
		}
		sdb, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("sql.Open error, dsn: %s, err: %w", dsn, err)
		}
		sdb.SetConnMaxLifetime(time.Minute * 3)
		sdb.SetMaxOpenConns(4)
		sdb.SetMaxIdleConns(1)
		return store.NewMySQLArchive(ctx, sdb)
	default:
		return nil, nil
	}
}

func validateFlags() int {
	if *flagServer == "" {
		return errorf("--server is required")
	}
	if u, err := url.Parse(*flagServer); err != nil || u.Host == "" {
		return errorf("--server: invalid url `%s`", *flagServer)
	}
	if *flagTimeoutMs == 0 {
		return errorf("--timeout must be positive")
	}
	if *flagAddr == "" {
		return errorf("--addr is required")
	}
	if err := validateAddr(*flagAddr); err != nil {
		return errorf("--addr: %v", err)
	}
	if *flagPidFile == "" {
		return errorf("--pid-file is required")
	}
	if *flagDataFile == "" {
		return errorf("--data-file is required")
	}

	switch *flagArchive {
	case archiveBolt, archiveNone:
	case archiveMySQL:
		if *flagMysqlDsn == "" {
			return errorf("--mysql-dsn is required with --archive=%s", archiveMySQL)
		}
	default:
		return errorf("invalid --archive `%s`, expect one of %s, %s, %s", *flagArchive, archiveBolt, archiveMySQL, archiveNone)
	}

	if *flagArchiveTTLDays != 0 && (*flagArchiveTTLDays < minTTLDays || *flagArchiveTTLDays > maxTTLDays) {
		return errorf("invalid --archive-ttl-days, expect 0 or in range [%d, %d]", minTTLDays, maxTTLDays)
	}

	if *flagKafkaBrokers != "" && *flagKafkaTopic == "" {
		return errorf("--kafka-topic is required with --kafka-brokers")
	}

	return 0
}

func validateAddr(s string) error {
	ips, _, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("error split host port from `%s`: %v", s, err)
	}
	ip := net.ParseIP(ips)
	if ip == nil {
		return fmt.Errorf("error parse IP from host `%s`", ips)
	}
	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("`%s` is not loopback or private address", ips)
	}
	return nil
}

func errorf(fmt string, args ...interface{}) int {
	glog.Errorf(fmt, args...)
	return 1
}

func savePid(name string, pid int) error {
	if _, err := os.Stat(name); err == nil {
		// Ok, see, if we have a stale lockfile here
		content, err := ioutil.ReadFile(name)
		if err != nil {
			return err
		}
		if len(content) > 0 {
			oldPid, err := strconv.Atoi(string(content))
			if err != nil {
				return err
			}

			proc, err := os.FindProcess(oldPid)
			if err != nil {
				return err
			}
			defer proc.Release()

			if err := proc.Signal(syscall.Signal(0)); err == nil {
				return fmt.Errorf("pid file: exists with pid: %d, the process is running", oldPid)
			}
			glog.Infof("pid file exists with pid: %d, but is not running", oldPid)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("pid file: stat error: %v", err)
	}

	if err := ioutil.WriteFile(name, []byte(strconv.Itoa(pid)), 0600); err != nil {
		return fmt.Errorf("pid file: write error: %v", err)
	}
	return nil
}

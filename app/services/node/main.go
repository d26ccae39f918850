package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/cerocoin/app/services/node/handlers"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/database"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/database/storage/boltdb"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/peer"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/signature"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/state"
	"github.com/ardanlabs/cerocoin/foundation/blockchain/worker"
	"github.com/ardanlabs/cerocoin/foundation/events"
	"github.com/ardanlabs/cerocoin/foundation/logger"
	"github.com/ardanlabs/cerocoin/foundation/nameservice"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CorsOrigins     []string      `conf:"default:*"`
		}
		State struct {
			KeyPath       string        `conf:"default:zblock/keys/node.json"`
			KeyBits       int           `conf:"default:1024"`
			Difficulty    int           `conf:"default:240"`
			TransPerBlock int           `conf:"default:2"`
			MaxIterations uint64        `conf:"default:0"`
			TxCooldown    time.Duration `conf:"default:10s"`
			DBPath        string        `conf:"default:zblock/blocks"`
			DBKind        string        `conf:"default:disk"`
		}
		Peer struct {
			Host        string        `conf:"default:0.0.0.0:6404"`
			KnownPeers  []string      `conf:"default:127.0.0.1:6405;127.0.0.1:6406"`
			DialTimeout time.Duration `conf:"default:3s"`
			DialRetries int           `conf:"default:3"`
			RetryDelay  time.Duration `conf:"default:2s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "CeroCoin peer node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Key Material

	// Key material is generated on the first run and reused afterwards so
	// the node keeps its identity.
	keys, err := loadOrGenerateKeys(log, cfg.State.KeyPath, cfg.State.KeyBits)
	if err != nil {
		return fmt.Errorf("unable to load key material for node: %w", err)
	}
	log.Infow("startup", "status", "key material", "node_id", keys.ID())

	// The name service labels the nodes whose key files share the key folder.
	ns, err := nameservice.New(filepath.Dir(cfg.State.KeyPath))
	if err != nil {
		return fmt.Errorf("unable to load name service: %w", err)
	}

	// =========================================================================
	// Node Support

	storage, err := openStorage(cfg.State.DBKind, cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("unable to open block archive: %w", err)
	}

	// The node packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// Fatal conditions raised by the worker G's are collected here. The
	// buffer keeps a second report from blocking.
	fatalErrors := make(chan error, 1)
	fatal := func(err error) {
		select {
		case fatalErrors <- err:
		default:
		}
	}

	// A peer set is the collection of connections to the other nodes in the
	// network so transactions and blocks can be shared.
	peerSet := peer.NewPeerSet()

	// The state value represents the node and manages the coins,
	// transactions and blocks and provides an API for application support.
	st, err := state.New(state.Config{
		Keys:          keys,
		Difficulty:    cfg.State.Difficulty,
		TransPerBlock: cfg.State.TransPerBlock,
		MaxIterations: cfg.State.MaxIterations,
		Storage:       storage,
		Peers:         peerSet,
		EvHandler:     ev,
		FatalHandler:  fatal,
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer st.Shutdown()

	// =========================================================================
	// Start Peer Service

	// The peer server runs the receive side of the wire protocol for every
	// node that connects to this one.
	peerServer := peer.NewServer(cfg.Peer.Host, st, ev)
	if err := peerServer.Start(); err != nil {
		return fmt.Errorf("unable to start peer server: %w", err)
	}
	defer peerServer.Shutdown()

	// =========================================================================
	// Peer Discovery

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conns, err := peer.Discover(ctx, peer.DiscoverConfig{
		Self:        cfg.Peer.Host,
		KnownPeers:  cfg.Peer.KnownPeers,
		DialTimeout: cfg.Peer.DialTimeout,
		DialRetries: cfg.Peer.DialRetries,
		RetryDelay:  cfg.Peer.RetryDelay,
		EvHandler:   ev,
	})
	if err != nil {
		return fmt.Errorf("peer discovery: %w", err)
	}

	for _, conn := range conns {
		if !peerSet.Add(conn) {
			conn.Close()
		}
	}

	// The worker package implements the mining, selling and block assembly
	// workflows. The worker will register itself with the state.
	worker.Run(st, cfg.State.TxCooldown, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		State:       st,
		Evts:        evts,
		NS:          ns,
		DialTimeout: cfg.Peer.DialTimeout,
		CorsOrigins: cfg.Web.CorsOrigins,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case err := <-fatalErrors:
		evts.Shutdown()
		public.Close()
		return fmt.Errorf("node failure: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancelPub := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancelPub()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// loadOrGenerateKeys reads the key file, creating it on the first run.
func loadOrGenerateKeys(log *zap.SugaredLogger, path string, bits int) (*signature.KeyMaterial, error) {
	keys, err := signature.LoadKeys(path)
	switch {
	case err == nil:
		return keys, nil

	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	log.Infow("startup", "status", "generating key material", "path", path, "bits", bits)

	if keys, err = signature.GenerateKeys(bits); err != nil {
		return nil, err
	}

	if err := keys.SaveKeys(path); err != nil {
		return nil, err
	}

	return keys, nil
}

// openStorage constructs the block archive of the configured kind.
func openStorage(kind string, dbPath string) (database.Storage, error) {
	switch kind {
	case "disk":
		return disk.New(dbPath)

	case "bolt":
		return boltdb.New(filepath.Join(dbPath, "blocks.db"))

	case "memory":
		return memory.New()
	}

	return nil, fmt.Errorf("unknown archive kind %q", kind)
}

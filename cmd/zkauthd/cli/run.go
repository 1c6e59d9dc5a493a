package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allsmog/zkauth-go/pkg/api"
	"github.com/allsmog/zkauth-go/pkg/service"
	"github.com/allsmog/zkauth-go/pkg/store"
	"github.com/allsmog/zkauth-go/pkg/zkauth"
	"github.com/allsmog/zkauth-go/pkg/zkauth/discretelog"
	"github.com/allsmog/zkauth-go/pkg/zkauth/elliptic"
)

// Run loads or generates the verifier's configuration, wires the auth
// state machine and wire surface, and serves until an interrupt or
// termination signal arrives, then shuts down gracefully. If
// opts.ConfigGenerate is set, it generates and persists a configuration
// and returns without serving.
func Run(opts *Options) error {
	cfg, err := LoadOrGenerateConfiguration(opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if opts.ConfigGenerate {
		log.Printf("generated %s configuration at %s", cfg.Flavor, opts.ConfigPath)
		return nil
	}

	verifier, err := verifierFromConfiguration(cfg)
	if err != nil {
		return fmt.Errorf("building verifier: %w", err)
	}

	st := store.NewMemoryStore(opts.ChallengeTTL, opts.SessionTTL)
	defer st.Close()

	svc := service.New(verifier, st, cfg)
	srv := api.New(svc)

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", opts.Host, opts.Port))
	if err != nil {
		return fmt.Errorf("listening on %s:%d: %w", opts.Host, opts.Port, err)
	}

	log.Printf("flavor: %s", cfg.Flavor)
	log.Printf("challenge TTL: %v, session TTL: %v", opts.ChallengeTTL, opts.SessionTTL)
	log.Printf("listening on %s", listener.Addr())

	httpServer := &http.Server{Handler: srv}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

func verifierFromConfiguration(cfg zkauth.Configuration) (zkauth.Verifier, error) {
	switch cfg.Flavor {
	case zkauth.FlavorDiscreteLogarithm:
		return discretelog.FromConfiguration(cfg)
	case zkauth.FlavorEllipticCurve:
		return elliptic.FromConfiguration(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown configuration flavor %q", zkauth.ErrInvalidArgument, cfg.Flavor)
	}
}

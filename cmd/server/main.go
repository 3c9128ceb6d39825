package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"contact-service/internal/factory"
	"contact-service/internal/handler"
	"contact-service/internal/util"
)

func main() {
	// Initialize factory (which loads config and initializes all clients)
	f, err := factory.NewFactory()
	if err != nil {
		util.Fatal("Failed to initialize factory", util.ErrorField(err))
	}
	defer f.Close()

	cfg := f.Config()

	contactHandler := handler.NewContactHandler(f.ContactService(), cfg.Admin.Token, util.Get())
	router := handler.NewRouter(contactHandler, util.Get())

	var serverAddr string
	if cfg.Server.EnableTLS {
		serverAddr = fmt.Sprintf(":%d", cfg.Server.TLSPort)
	} else {
		serverAddr = cfg.GetServerAddress()
	}

	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if cfg.Server.EnableTLS {
		server.TLSConfig = f.TLSManager().GetTLSConfig()
		util.Info("Starting HTTPS server",
			util.String("environment", cfg.Environment),
			util.Int("port", cfg.Server.TLSPort),
			util.Bool("auto_cert", cfg.Server.AutoCert),
		)
	} else {
		util.Info("Starting HTTP server",
			util.String("environment", cfg.Environment),
			util.String("address", serverAddr),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if cfg.Server.EnableTLS {
			// Certificates come from the TLS manager (autocert or files).
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// ACME HTTP-01 challenges need a plain listener on port 80.
	if cfg.Server.EnableTLS && cfg.Server.AutoCert {
		if m := f.TLSManager().AutocertManager(); m != nil {
			challengeServer := &http.Server{Addr: ":80", Handler: m.HTTPHandler(nil)}
			g.Go(func() error {
				util.Info("Starting ACME challenge server on port 80")
				if err := challengeServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					util.Error("ACME challenge server failed", util.ErrorField(err))
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return challengeServer.Shutdown(shutdownCtx)
			})
		}
	}

	// The in-memory ledger needs its periodic sweep to stay bounded.
	if ledger := f.MemoryLedger(); ledger != nil {
		g.Go(func() error {
			return ledger.Run(gctx, cfg.RateLimit.SweepInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		util.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		util.Info("Server shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		util.Error("Server exited with error", util.ErrorField(err))
	}
}

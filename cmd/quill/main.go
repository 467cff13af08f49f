package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sreesansree/Quill-Backend/internal/auth"
	"github.com/sreesansree/Quill-Backend/internal/config"
	httpapp "github.com/sreesansree/Quill-Backend/internal/http"
	"github.com/sreesansree/Quill-Backend/internal/mail"
	"github.com/sreesansree/Quill-Backend/internal/pending"
	"github.com/sreesansree/Quill-Backend/internal/rate"
	"github.com/sreesansree/Quill-Backend/internal/store/sqlite"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-v", "--version", "version":
			fmt.Println("quill v0.1.0")
			return
		case "-h", "--help", "help":
			printUsage()
			return
		}
	}
	runServer()
}

func printUsage() {
	fmt.Println(`quill - Blogging platform backend

Usage: quill [options]

Starts the API server. Configuration is read from the environment:

  QUILL_ADDR            Listen address (default: :8080)
  QUILL_DB              Database path (default: quill.db)
  QUILL_UPLOAD_DIR      Directory for uploaded images (default: uploads)
  QUILL_JWT_SECRET      Secret for signing session tokens
  QUILL_BCRYPT_COST     Password hashing cost (default: 10)
  QUILL_TOKEN_TTL       Session token lifetime (default: 24h)
  QUILL_OTP_TTL         OTP validity window (default: 10m)
  QUILL_PENDING_SWEEP   Pending-registration sweep interval (default: 15m)
  QUILL_SMTP_ADDR       SMTP host:port; mail is logged locally when unset
  QUILL_SMTP_FROM       From address for outgoing mail
  QUILL_SMTP_USER       SMTP username
  QUILL_SMTP_PASSWORD   SMTP password`)
}

func runServer() {
	cfg := config.Load()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer store.Close()

	var sender mail.Sender
	if cfg.SMTP.Addr != "" {
		sender = &mail.SMTPSender{
			Addr:     cfg.SMTP.Addr,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}
	} else {
		log.Println("QUILL_SMTP_ADDR not set; outgoing mail will be logged, not sent")
		sender = mail.LogSender{}
	}

	table := pending.NewTable()
	defer table.Close()
	// Expired entries linger one extra TTL so verify attempts still get a
	// precise "expired" answer before eviction.
	table.StartReaper(cfg.PendingSweep, cfg.OTPTTL)

	limiter := rate.NewMemory()
	authSvc := auth.NewService(store, table, sender, cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL, cfg.OTPTTL)

	server, err := httpapp.NewServer(store, authSvc, limiter, cfg)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("quill listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

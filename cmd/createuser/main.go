// Command createuser adds an account, optionally with staff rights.
//
//	createuser -username alice -password s3cretpass -email alice@example.com -staff
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"boarddash/internal/config"
	"boarddash/internal/db"
	"boarddash/internal/logging"
	"boarddash/internal/services"
	"boarddash/internal/store"

	"go.uber.org/zap"
)

func main() {
	var in services.NewUserInput
	flag.StringVar(&in.Username, "username", "", "login name (required)")
	flag.StringVar(&in.Password, "password", os.Getenv("CREATEUSER_PASSWORD"), "password, at least 8 characters; defaults to $CREATEUSER_PASSWORD")
	flag.StringVar(&in.Email, "email", "", "email address")
	flag.BoolVar(&in.IsStaff, "staff", false, "grant access to the staff dashboard")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.Init(cfg.Logging); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	logger := logging.WithComponent("createuser")
	defer logger.Sync()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	u, err := services.NewAccountService(store.New(conn)).CreateUser(context.Background(), in)
	if err != nil {
		if fields := services.FieldErrors(err); fields != nil {
			for field, msg := range fields {
				logger.Error("Invalid input", zap.String("field", field), zap.String("message", msg))
			}
			os.Exit(2)
		}
		logger.Fatal("Failed to create user", zap.Error(err))
	}
	logger.Info("User created", zap.Uint("id", u.ID), zap.String("username", u.Username), zap.Bool("staff", u.IsStaff))
}

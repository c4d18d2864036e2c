package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage-go/pkg/api"
	"github.com/vantagecrm/vantage-go/pkg/gatewaytest"
	"github.com/vantagecrm/vantage-go/pkg/observability"
)

func main() {
	// Parse command line flags
	addr := flag.String("addr", ":8000", "Address to listen on")
	tokenTTL := flag.Duration("token-ttl", 5*time.Minute, "Access token lifetime")
	registration := flag.Bool("registration", true, "Enable self-service registration")
	seedEmail := flag.String("seed-email", "admin@local.test", "Seeded admin email")
	seedPassword := flag.String("seed-password", "admin", "Seeded admin password")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	gw := gatewaytest.New(gatewaytest.Options{
		AccessTokenTTL:      *tokenTTL,
		RegistrationEnabled: *registration,
		Logger:              logger,
		Modules: []api.ModuleInfo{
			{ID: "m-1", Code: "CRM", Name: "Customer Relations", DisplayOrder: 1, IsEnabled: true, IsCoreModule: true},
			{ID: "m-2", Code: "HRMS", Name: "Human Resources", DisplayOrder: 2, IsEnabled: true},
			{ID: "m-3", Code: "BILLING", Name: "Billing", DisplayOrder: 3, IsEnabled: true},
			{ID: "m-4", Code: "REPORTS", Name: "Reporting", DisplayOrder: 4, IsEnabled: true},
		},
	})
	gw.SeedUser(*seedEmail, *seedPassword,
		[]string{"ADMIN", "HR_MANAGER"},
		[]string{"leads:read", "leads:write", "hr:manage", "billing:read"})
	gw.SeedLeads(
		api.Lead{ID: "l-1", FirstName: "Tess", LastName: "Nguyen", Company: "Northwind", Status: "new", CreatedAt: time.Now().UTC()},
		api.Lead{ID: "l-2", FirstName: "Omar", LastName: "Haddad", Company: "Fabrikam", Status: "qualified", CreatedAt: time.Now().UTC()},
	)
	gw.SeedNotifications(
		api.Notification{ID: "n-1", Title: "Welcome to Vantage", Severity: "info", CreatedAt: time.Now().UTC()},
	)

	server := &http.Server{
		Addr:         *addr,
		Handler:      gw,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	shutdownLogger := observability.NewLogger(observability.InfoLevel, os.Stderr)
	sm := observability.NewShutdownManager(shutdownLogger, server, 10*time.Second)

	go func() {
		logger.WithField("addr", *addr).Info("gateway simulator listening")
		logger.WithFields(logrus.Fields{
			"email":    *seedEmail,
			"password": *seedPassword,
		}).Info("seeded admin credentials")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("gateway simulator failed")
		}
	}()

	if err := sm.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown error")
		os.Exit(1)
	}
}

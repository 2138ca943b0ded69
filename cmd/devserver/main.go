package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/xiaoen-app/appcore/pkg/devserver"
)

func main() {
	// Load dotenv
	godotenv.Load()

	// Init Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn: os.Getenv("SENTRY_DSN"),
	}); err != nil {
		panic(err)
	}

	// Serve the fake backend
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Serving dev backend on :" + port)
	http.ListenAndServe(":"+port, devserver.New().Handler())

	// Wait for Sentry events to flush
	sentry.Flush(time.Second * 5)
}

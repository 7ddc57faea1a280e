package main

import (
	"partylobby/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Local .env is optional
	_ = godotenv.Load()

	if err := server.Run(); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

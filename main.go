package main

import (
	log "github.com/sirupsen/logrus"

	"movie-ticketing/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.WithError(err).Fatal("service exited")
	}
}

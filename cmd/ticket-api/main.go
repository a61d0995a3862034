package main

import (
	"log"

	"github.com/psds-microservice/ticket-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

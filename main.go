package main

import (
	"os"

	"blogfeed/cmd"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// A missing .env file is fine, flags and the environment still apply
	_ = godotenv.Load()

	if err := cmd.RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

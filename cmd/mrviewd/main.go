package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/goydb/mrview/pkg/mrview"
)

func main() {
	cfg, err := mrview.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	cfg.ParseFlags()

	engine, err := cfg.BuildEngine()
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	loggedRouter := handlers.LoggingHandler(os.Stdout, engine.Handler)

	log.Printf("Listening on %s...", cfg.ListenAddress)
	err = http.ListenAndServe(cfg.ListenAddress, loggedRouter)
	if err != nil {
		log.Fatal(err)
	}
}

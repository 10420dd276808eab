package main

import (
	"context"
	"log"

	"nhgate/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatal(err)
	}

	if err = a.Record(context.Background()); err != nil {
		log.Fatal(err)
	}
}

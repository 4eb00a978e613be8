package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/surrealdb/dataorg/pkg/dataorg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := dataorg.Main(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

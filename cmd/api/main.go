package main

import (
	"context"
	"log"

	"github.com/Apurer/go-sales-order-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("sales-order API failed: %v", err)
	}
}

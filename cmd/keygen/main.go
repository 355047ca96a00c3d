package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/flexprice/checkout/internal/auth"
	"github.com/flexprice/checkout/internal/security"
)

func main() {
	principal := flag.String("principal", "", "Principal an operator API key authenticates as")
	flag.Parse()

	// Generate and display the encryption key.
	key, err := security.GenerateRandomKey()
	if err != nil {
		log.Fatalf("Unable to generate key: %v", err)
	}
	fmt.Println("Generated encryption key (hex):", key)

	if *principal == "" {
		return
	}

	apiKey, err := auth.GenerateAPIKey()
	if err != nil {
		log.Fatalf("Unable to generate api key: %v", err)
	}
	fmt.Println("Generated API key:", apiKey)
	fmt.Printf("Config entry:\n  auth:\n    apikey:\n      keys:\n        %s:\n          principal: %s\n          isactive: true\n",
		security.HashKey(apiKey), *principal)
}

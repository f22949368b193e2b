/*
Copyright © 2025 ragforge
*/
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/ragforge/pdfrag/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}
}

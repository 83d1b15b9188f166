package main

import (
	"os"

	"github.com/deploypanel/deploypanel/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

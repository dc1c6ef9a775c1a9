package main

import (
	_ "time/tzdata"

	"mediamatrixhub/internal/app"
)

func main() {
	app.Run()
}

package main

import "uniauth/internal/app"

func main() {
	app.Run()
}

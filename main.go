package main

import "github.com/1auto-market/vehiclestore-backend/cmd"

func main() {
	cmd.Execute()
}

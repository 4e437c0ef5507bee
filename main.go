package main

import "shift-booking-backend/cmd"

func main() {
	cmd.Run()
}

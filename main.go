package main

import "github.com/vetlink-solutions/ms-go-clinic-payments/cmd"

func main() {
	cmd.Execute()
}

// Package main is the jsonscraper executable.
package main

import "github.com/JakeFAU/json-scraper/cmd"

func main() {
	cmd.Execute()
}

/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/miftajuneidi2008/ansar-dfp/cmd"

func main() {
	cmd.Execute()
}

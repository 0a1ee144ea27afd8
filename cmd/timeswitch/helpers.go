package main

import (
	"github.com/fatih/color"
)

var bold = color.New(color.Bold).SprintFunc()

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func onOff(on bool) string {
	if on {
		return color.New(color.Bold, color.FgGreen).Sprint("ON")
	}
	return color.New(color.Bold, color.FgRed).Sprint("OFF")
}

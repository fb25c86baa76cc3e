package main

import (
	"github.com/fatih/color"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge"
)

var (
	colorHeader = color.New(color.FgBlue, color.Bold).SprintFunc()
	colorOk     = color.New(color.FgGreen).SprintFunc()
	colorWarn   = color.New(color.FgYellow).SprintFunc()
	colorBad    = color.New(color.FgRed, color.Bold).SprintFunc()
)

// colorDiagnostic highlights diagnostics that left a part unexpanded
func colorDiagnostic(d merge.LoopDiagnostic) string {
	if d.Fatal() {
		return colorBad(d.Error())
	}
	return colorWarn(d.Error())
}

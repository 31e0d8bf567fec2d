package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mgomes/espscript/esp"
)

var (
	warningLabel = color.New(color.FgYellow, color.Bold)
	frameStyle   = color.New(color.Faint)
)

func diagnosticPrinter(w io.Writer) esp.DiagnosticHandler {
	return func(d esp.Diagnostic) {
		warningLabel.Fprint(w, "warning: ")
		fmt.Fprintln(w, d.String())
		if d.CodeFrame != "" {
			frameStyle.Fprintln(w, d.CodeFrame)
		}
	}
}

package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ASCII logo for the application
const ASCIILogo = `
 ██╗   ██╗██╗  ██╗    ██████╗  █████╗  ██████╗██╗  ██╗██╗   ██╗██████╗
 ██║   ██║██║ ██╔╝    ██╔══██╗██╔══██╗██╔════╝██║ ██╔╝██║   ██║██╔══██╗
 ██║   ██║█████╔╝     ██████╔╝███████║██║     █████╔╝ ██║   ██║██████╔╝
 ╚██╗ ██╔╝██╔═██╗     ██╔══██╗██╔══██║██║     ██╔═██╗ ██║   ██║██╔═══╝
  ╚████╔╝ ██║  ██╗    ██████╔╝██║  ██║╚██████╗██║  ██╗╚██████╔╝██║
   ╚═══╝  ╚═╝  ╚═╝    ╚═════╝ ╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝ ╚═════╝ ╚═╝
          profile photos -> Yandex.Disk
`

var (
	outMu     sync.Mutex
	out       io.Writer = os.Stdout
	quietMode bool
)

// SetOutput redirects all console output. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

// Output returns the writer console output goes to
func Output() io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	return out
}

// SetQuietMode suppresses informational output. Errors are still printed.
func SetQuietMode(quiet bool) {
	outMu.Lock()
	defer outMu.Unlock()
	quietMode = quiet
}

// IsQuietMode reports whether informational output is suppressed
func IsQuietMode() bool {
	outMu.Lock()
	defer outMu.Unlock()
	return quietMode
}

func emit(s string, always bool) {
	if !always && IsQuietMode() {
		return
	}
	fmt.Fprintln(Output(), s)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	emit(logoStyle.Render(strings.TrimPrefix(ASCIILogo, "\n")), false)
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		emit(Red(msg+": "+fmt.Sprintf("%v", args[0])), true)
	} else {
		emit(Red(msg), true)
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	emit(Green(msg), false)
}

// PrintInfo prints a label and value pair
func PrintInfo(label string, value string) {
	emit(fmt.Sprintf("%s: %s", Cyan(label), Yellow(value)), false)
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		emit(Yellow(msg+": "+fmt.Sprintf("%v", args[0])), false)
	} else {
		emit(Yellow(msg), false)
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	emit(Magenta(msg), false)
}

// PrintSummary prints label/value rows inside a rounded box
func PrintSummary(title string, rows [][2]string) {
	width := 0
	for _, r := range rows {
		if len(r[0]) > width {
			width = len(r[0])
		}
	}

	lines := []string{Magenta(title)}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s  %s", Cyan(fmt.Sprintf("%-*s", width, r[0])), r[1]))
	}
	emit(summaryStyle.Render(strings.Join(lines, "\n")), false)
}

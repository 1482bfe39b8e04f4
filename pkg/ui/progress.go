package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"
)

const barWidth = 30

// UploadProgress renders the upload loop. On a terminal the bar is redrawn in
// place; otherwise one line is printed per finished upload.
type UploadProgress struct {
	mu          sync.Mutex
	w           io.Writer
	folder      string
	total       int
	uploaded    int
	failed      int
	current     string
	startTime   time.Time
	bar         progress.Model
	interactive bool
}

// NewUploadProgress creates a progress display for total uploads into folder
func NewUploadProgress(w io.Writer, folder string, total int) *UploadProgress {
	return &UploadProgress{
		w:           w,
		folder:      folder,
		total:       total,
		startTime:   time.Now(),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		interactive: isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start resets the counters for a loop of total uploads
func (p *UploadProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.uploaded = 0
	p.failed = 0
	p.startTime = time.Now()
	if p.interactive {
		p.printProgress()
	}
}

// StartUpload marks the start of an upload
func (p *UploadProgress) StartUpload(fileName string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = fileName
	if p.interactive {
		p.printProgress()
	}
}

// CompleteUpload marks an upload as accepted
func (p *UploadProgress) CompleteUpload(fileName, sizeTag string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.uploaded++
	p.current = ""
	if p.interactive {
		p.printProgress()
		return
	}
	fmt.Fprintf(p.w, "%s %s %s %s\n", Green("✓"), fileName, Dim("•"), Dim("size "+sizeTag))
}

// FailUpload marks an upload as rejected
func (p *UploadProgress) FailUpload(fileName string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed++
	p.current = ""
	if p.interactive {
		fmt.Fprintf(p.w, "\r%s\r%s Failed: %s - %v\n", strings.Repeat(" ", 100), Red("✗"), fileName, err)
		p.printProgress()
		return
	}
	fmt.Fprintf(p.w, "%s %s - %v\n", Red("✗"), fileName, err)
}

// Complete prints the final summary
func (p *UploadProgress) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interactive {
		fmt.Fprintln(p.w)
	}

	fmt.Fprintf(p.w, "%s Uploaded %d of %d photos to %s\n",
		Green("✓"),
		p.uploaded,
		p.total,
		Cyan(p.folder),
	)
	fmt.Fprintf(p.w, "  %s finished in %s\n", Dim("•"), formatDuration(time.Since(p.startTime)))
	if p.failed > 0 {
		fmt.Fprintf(p.w, "  %s %s\n", Dim("•"), Red(fmt.Sprintf("%d uploads failed", p.failed)))
	}
}

// Line returns the current progress line without control characters
func (p *UploadProgress) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *UploadProgress) line() string {
	done := p.uploaded + p.failed
	pct := 0.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total)
	}

	line := fmt.Sprintf("%s %s %d/%d", Cyan(p.folder), p.bar.ViewAs(pct), done, p.total)
	if p.current != "" {
		line += fmt.Sprintf(" • %s", p.current)
	}
	if p.failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.failed)))
	}
	return line
}

// printProgress clears the line and redraws it
func (p *UploadProgress) printProgress() {
	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 100), p.line())
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

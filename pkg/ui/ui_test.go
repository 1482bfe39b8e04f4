package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(prev)
		SetQuietMode(false)
	})
	return &buf
}

func TestPrintHelpers(t *testing.T) {
	buf := captureOutput(t)

	PrintInfo("Folder", "vk_profile_photos_42")
	PrintSuccess("done")
	PrintWarning("careful", "count clamped")
	PrintError("failed", errors.New("boom"))
	PrintHighlight("[UPLOADING]")

	out := buf.String()
	assert.Contains(t, out, "Folder")
	assert.Contains(t, out, "vk_profile_photos_42")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "careful: count clamped")
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "[UPLOADING]")
}

func TestQuietModeKeepsErrors(t *testing.T) {
	buf := captureOutput(t)
	SetQuietMode(true)
	assert.True(t, IsQuietMode())

	PrintLogo()
	PrintInfo("Folder", "x")
	PrintSuccess("done")
	PrintError("something broke")

	assert.NotContains(t, buf.String(), "Folder")
	assert.NotContains(t, buf.String(), "done")
	assert.Contains(t, buf.String(), "something broke")
}

func TestPrintSummary(t *testing.T) {
	buf := captureOutput(t)

	PrintSummary("Backup finished", [][2]string{
		{"Uploaded", "2"},
		{"Manifest", "uploaded_photos.json"},
	})

	out := buf.String()
	assert.Contains(t, out, "Backup finished")
	assert.Contains(t, out, "Uploaded")
	assert.Contains(t, out, "uploaded_photos.json")
}

func TestUploadProgressNonInteractive(t *testing.T) {
	var buf bytes.Buffer
	p := NewUploadProgress(&buf, "vk_profile_photos_42", 3)
	require.False(t, p.interactive)

	p.StartUpload("10.jpg")
	assert.Contains(t, p.Line(), "10.jpg")
	p.CompleteUpload("10.jpg", "z")
	p.StartUpload("5.jpg")
	p.FailUpload("5.jpg", errors.New("507 Insufficient Storage"))
	p.StartUpload("10_2024-01-03.jpg")
	p.CompleteUpload("10_2024-01-03.jpg", "w")

	assert.Contains(t, p.Line(), "3/3")
	assert.Contains(t, p.Line(), "100%")
	assert.Contains(t, p.Line(), "1 errors")

	p.Complete()

	out := buf.String()
	assert.Contains(t, out, "✓ 10.jpg")
	assert.Contains(t, out, "✗ 5.jpg - 507 Insufficient Storage")
	assert.Contains(t, out, "Uploaded 2 of 3 photos to vk_profile_photos_42")
	assert.Contains(t, out, "1 uploads failed")
	assert.NotContains(t, out, "\r", "non-terminal output must not redraw lines")
}

func TestUploadProgressEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := NewUploadProgress(&buf, "f", 0)
	assert.Contains(t, p.Line(), "0/0")
	p.Complete()
	assert.Contains(t, buf.String(), "Uploaded 0 of 0 photos")
}

func TestUploadProgressStartResetsTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewUploadProgress(&buf, "f", 5)
	p.Start(2)
	p.CompleteUpload("1.jpg", "z")
	assert.Contains(t, p.Line(), "1/2")
	assert.Contains(t, p.Line(), "50%")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "5s", formatDuration(5*time.Second))
	assert.Equal(t, "2m5s", formatDuration(2*time.Minute+5*time.Second))
	assert.Equal(t, "1h30m", formatDuration(90*time.Minute))
}

type fakeSender struct {
	titles []string
	err    error
}

func (f *fakeSender) Send(title, message string) error {
	f.titles = append(f.titles, title)
	return f.err
}

func TestNotifier(t *testing.T) {
	sender := &fakeSender{err: errors.New("notify-send not found")}
	n := NewNotifierWithSender(sender)

	n.SendSuccess("Backup complete", "3 photos")
	n.SendError("Backup failed", "token expired")
	assert.Equal(t, []string{"Backup complete", "Backup failed"}, sender.titles)

	var nilNotifier *Notifier
	assert.NotPanics(t, func() { nilNotifier.SendSuccess("x", "y") })
	assert.NotPanics(t, func() { NewNotifierWithSender(nil).SendError("x", "y") })
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"vkbackup/pkg/backup"
	"vkbackup/pkg/config"
)

// promptRequest asks for whatever the flags did not provide. An empty count
// answer selects defaultCount.
func promptRequest(in io.Reader, out io.Writer, userID string, count int, haveCount bool, defaultCount int) (backup.Request, error) {
	if defaultCount <= 0 {
		defaultCount = config.DefaultPhotoCount
	}

	reader := bufio.NewReader(in)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		fmt.Fprint(out, "Enter VK user ID: ")
		input, err := readLine(reader)
		if err != nil {
			return backup.Request{}, fmt.Errorf("failed to read user id: %w", err)
		}
		userID = input
	}

	if !haveCount {
		fmt.Fprintf(out, "How many photos to back up? [%d]: ", defaultCount)
		input, err := readLine(reader)
		if err != nil {
			return backup.Request{}, fmt.Errorf("failed to read photo count: %w", err)
		}
		n, err := backup.ParseCount(input, defaultCount)
		if err != nil {
			return backup.Request{}, err
		}
		count = n
	}

	req := backup.Request{UserID: userID, Count: count}
	return req, req.Validate()
}

// readLine returns one trimmed line. End of input reads as an empty line.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func Centered(content string, w, h int) string {
	if w == 0 || h == 0 {
		return boxStyle.Render(content)
	}
	return lipgloss.Place(
		w, h,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content),
		lipgloss.WithWhitespaceChars(" "),
	)
}

func nonceValidator(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if _, err := strconv.Atoi(input); err != nil {
		return errors.New("Invalid nonce: nonce should be a whole number!")
	}
	return nil
}

// parseNonce returns nil for an empty input.
func parseNonce(input string) (*int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	if err := nonceValidator(input); err != nil {
		return nil, err
	}
	n, _ := strconv.Atoi(input)
	return &n, nil
}

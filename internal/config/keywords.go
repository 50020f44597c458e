package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/leonardotrapani/aulavoz/internal/speaker"
)

var (
	ErrEmptyKeyword = errors.New("keyword is empty")
	ErrInvalidColor = errors.New("invalid color")
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is a #rgb or #rrggbb color.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

func normalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}

// AddKeyword appends kw unless an equal keyword is already present. It
// reports whether the list changed.
func (c *Config) AddKeyword(kw string) (bool, error) {
	kw = normalizeKeyword(kw)
	if kw == "" {
		return false, ErrEmptyKeyword
	}
	for _, existing := range c.Classifier.Keywords {
		if normalizeKeyword(existing) == kw {
			return false, nil
		}
	}
	c.Classifier.Keywords = append(c.Classifier.Keywords, kw)
	return true, nil
}

// RemoveKeyword drops kw, matched case-insensitively. It reports whether
// anything was removed. Removing the last keyword leaves the list empty; the
// classifier then falls back to the default keyword.
func (c *Config) RemoveKeyword(kw string) bool {
	kw = normalizeKeyword(kw)
	before := len(c.Classifier.Keywords)
	c.Classifier.Keywords = slices.DeleteFunc(c.Classifier.Keywords, func(existing string) bool {
		return normalizeKeyword(existing) == kw
	})
	return len(c.Classifier.Keywords) != before
}

// SetKeywords replaces the list with the comma separated keywords in list.
func (c *Config) SetKeywords(list string) {
	c.Classifier.Keywords = nil
	for _, kw := range strings.Split(list, ",") {
		_, _ = c.AddKeyword(kw)
	}
	if len(c.Classifier.Keywords) == 0 {
		c.Classifier.Keywords = []string{speaker.FallbackKeyword}
	}
}

func (c *Config) SetProfessorColor(color string) error {
	color = strings.TrimSpace(color)
	if !IsHexColor(color) {
		return fmt.Errorf("%w: %q (must be #rgb or #rrggbb)", ErrInvalidColor, color)
	}
	c.Classifier.ProfessorColor = strings.ToLower(color)
	return nil
}

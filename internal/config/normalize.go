// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-load normalization.
// It is allowed to mutate settings.
func Normalize(s *Settings) {
	if s == nil {
		return
	}

	s.Log.Level = strings.ToLower(strings.TrimSpace(s.Log.Level))
	s.Log.Format = strings.ToLower(strings.TrimSpace(s.Log.Format))

	// An empty value in the file means "use the default".
	d := Defaults()
	if s.Log.Level == "" {
		s.Log.Level = d.Log.Level
	}
	if s.Log.Format == "" {
		s.Log.Format = d.Log.Format
	}

	s.Display = strings.TrimSpace(s.Display)
}

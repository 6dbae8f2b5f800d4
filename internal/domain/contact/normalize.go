package contact

import (
	"regexp"
	"strings"
)

const phoneDigits = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize reduces a raw value to its canonical pool identity. The
// second return is false when the value cannot be a valid identity for
// the channel.
func Normalize(channel Channel, raw string) (string, bool) {
	switch channel {
	case ChannelWhatsApp:
		return normalizePhone(raw)
	case ChannelEmail:
		return normalizeEmail(raw)
	default:
		return "", false
	}
}

// normalizePhone strips the country prefix and every non-digit, then
// requires exactly ten digits.
func normalizePhone(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "+91") {
		s = s[3:]
	} else if strings.HasPrefix(s, "91") {
		s = s[2:]
	}

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	s = b.String()

	if len(s) != phoneDigits {
		return s, false
	}
	return s, true
}

func normalizeEmail(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if !emailPattern.MatchString(s) {
		return s, false
	}
	return s, true
}

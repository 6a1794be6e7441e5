package utils

import "regexp"

var (
	ethiopianPhoneRe = regexp.MustCompile(`^(\+251|0)?[1-9][0-9]{8}$`)
	emailRe          = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IsEthiopianPhone matches +251/0 prefixed or bare nine digit numbers after
// stripping spaces and hyphens.
func IsEthiopianPhone(s string) bool {
	return ethiopianPhoneRe.MatchString(StripPhone(s))
}

func IsEmail(s string) bool {
	return emailRe.MatchString(s)
}

// PhoneKey reduces an Ethiopian number to its nine subscriber digits so
// +251, 0 and bare forms compare equal. Other input is only stripped.
func PhoneKey(s string) string {
	p := StripPhone(s)
	if !ethiopianPhoneRe.MatchString(p) {
		return p
	}
	return p[len(p)-9:]
}

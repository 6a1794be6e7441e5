package auth

import "regexp"

type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// PasswordStrength scores length (8 and 12) plus one point per character
// class: 0-2 weak, 3-4 medium, 5-6 strong.
func PasswordStrength(pw string) Strength {
	score := 0
	if len(pw) >= 8 {
		score++
	}
	if len(pw) >= 12 {
		score++
	}
	for _, re := range []*regexp.Regexp{reLower, reUpper, reDigit, reSpecial} {
		if re.MatchString(pw) {
			score++
		}
	}
	switch {
	case score <= 2:
		return StrengthWeak
	case score <= 4:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

// Package cpf validates Brazilian CPF numbers (11-digit personal tax ids with
// two trailing checksum digits).
package cpf

// Normalize strips every non-digit character from s. Stores match CPFs on the
// normalized form so formatted input ("040.178.178-07") and bare digits
// compare equal.
func Normalize(s string) string {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	return string(digits)
}

// Valid reports whether s is a well-formed CPF. Non-digit characters are
// ignored. Degenerate ids made of a single repeated digit pass the checksum
// but are placeholders, so they are rejected.
func Valid(s string) bool {
	clean := Normalize(s)
	if len(clean) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < 11; i++ {
		if clean[i] != clean[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	if checkDigit(clean, 9) != int(clean[9]-'0') {
		return false
	}
	return checkDigit(clean, 10) == int(clean[10]-'0')
}

// checkDigit computes the checksum digit at position pos (9 or 10) from the
// preceding digits: weighted sum with weights pos+1 .. 2, then
// (sum*10) mod 11, with 10 mapped to 0.
func checkDigit(clean string, pos int) int {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += int(clean[i]-'0') * (pos + 1 - i)
	}
	remainder := (sum * 10) % 11
	if remainder == 10 {
		remainder = 0
	}
	return remainder
}

package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

const (
	PASSWORD_MIN_LEN = 12
	PASSWORD_MAX_LEN = 512
)

func SanitizeEmail(email string) string {
	email = strings.ToLower(email)
	email = strings.Trim(email, " \n\r")
	return email
}

// CheckEmailFormat to check if input string is a correct email address
func CheckEmailFormat(email string) bool {
	if len(email) > 254 {
		return false
	}
	_, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// additional regex check for correct email format
	emailRule := regexp.MustCompile(`^[a-zA-Z0-9._%+'-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRule.MatchString(email)
}

// CheckPasswordFormat to check if password fulfills password rules
func CheckPasswordFormat(password string) bool {
	pl := len(password)
	if pl < PASSWORD_MIN_LEN || pl > PASSWORD_MAX_LEN {
		return false
	}

	var lowercase, uppercase, number, symbol int
	for _, r := range password {
		switch {
		case 'a' <= r && r <= 'z':
			lowercase = 1
		case 'A' <= r && r <= 'Z':
			uppercase = 1
		case '0' <= r && r <= '9':
			number = 1
		default:
			symbol = 1
		}
	}
	return lowercase+uppercase+number+symbol > 2
}

// DisplayNameFromEmail derives a fallback display name from the local part
// of an email address.
func DisplayNameFromEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 1 {
		return "User"
	}
	return email[:at]
}

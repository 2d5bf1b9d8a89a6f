package users

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Initials takes the first letter of the first two words, or the first two letters of a single word.
func Initials(username string) string {
	words := strings.FieldsFunc(username, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var initials []rune
	switch {
	case len(words) == 0:
		return "?"
	case len(words) == 1:
		runes := []rune(words[0])
		initials = runes[:min(2, len(runes))]
	default:
		initials = []rune{[]rune(words[0])[0], []rune(words[1])[0]}
	}
	return strings.ToUpper(string(initials))
}

func AvatarURL(publicURL, username string) string {
	return fmt.Sprintf("%s/v1/avatars/initials?name=%s", strings.TrimRight(publicURL, "/"), url.QueryEscape(username))
}

// AvatarSVG renders the initials badge served behind AvatarURL.
func AvatarSVG(username string) string {
	palette := []string{"#FF9C01", "#FF8E01", "#7B61FF", "#2DBE7E", "#1E88E5", "#E53935"}
	sum := 0
	for _, r := range username {
		sum += int(r)
	}
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="96" height="96" viewBox="0 0 96 96">`+
			`<rect width="96" height="96" rx="12" fill="%s"/>`+
			`<text x="50%%" y="50%%" dy=".35em" text-anchor="middle" font-family="sans-serif" font-size="40" fill="#FFFFFF">%s</text>`+
			`</svg>`,
		palette[sum%len(palette)], Initials(username))
}

package strcase

import "unicode"

// ToIdentifier lowers name and strips every character that cannot appear in
// a Go identifier, so a directory name such as "gen-protos.v1" becomes a
// usable package name. A leading digit gets an underscore prefix. The empty
// string is returned when nothing usable remains.
func ToIdentifier(name string) string {
	var result []rune

	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			result = append(result, unicode.ToLower(r))
		case unicode.IsDigit(r):
			if len(result) == 0 {
				result = append(result, '_')
			}
			result = append(result, r)
		}
	}

	return string(result)
}

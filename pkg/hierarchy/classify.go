package hierarchy

import (
	"strings"
	"unicode"

	"github.com/asepeyo/receipts-backend/pkg/directory"
)

// Groups carry no explicit role attribute in the directory, the role of a
// group is encoded in its naming convention. A "personal" group represents a
// team or unit, a "director" group holds the managers of the associated unit.
// Classification is an exact token match over the group name and email
// address, so "directorate" or "Director's" never classify as director.

var tokenSeparators = strings.NewReplacer("-", " ", "_", " ", "@", " ", ".", " ")

func hasToken(grp *directory.Group, token string) bool {
	normalized := tokenSeparators.Replace(strings.ToLower(grp.Name + " " + grp.Email))
	for _, candidate := range strings.Fields(normalized) {
		if candidate == token {
			return true
		}
	}
	return false
}

// IsDirectorGroup reports whether the group holds the managers of a unit.
func IsDirectorGroup(grp *directory.Group) bool {
	return hasToken(grp, "director")
}

// IsPersonalGroup reports whether the group represents a team or unit.
func IsPersonalGroup(grp *directory.Group) bool {
	return hasToken(grp, "personal")
}

// NamePrefix returns the leading token of a group name, lower-cased. The
// prefix identifies the unit and is used to construct candidate superior
// director group addresses. Returns an empty string when the group has no
// name.
func NamePrefix(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

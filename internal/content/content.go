package content

import "fmt"

// Kind identifies one of the listing collections served by the platform backend
type Kind string

const (
	KindUniversities Kind = "universities"
	KindPrograms     Kind = "programs"
	KindLocations    Kind = "locations"
	KindArticles     Kind = "articles"
	KindEvents       Kind = "events"
	KindFAQs         Kind = "faqs"
)

// Kinds returns all content kinds in serving order
func Kinds() []Kind {
	return []Kind{
		KindUniversities,
		KindPrograms,
		KindLocations,
		KindArticles,
		KindEvents,
		KindFAQs,
	}
}

// ParseKind validates a kind string from user input or task payloads
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind '%s'", s)
}

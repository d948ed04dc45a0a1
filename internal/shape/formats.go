package shape

import "regexp"

// String formats a shape may require
const (
	FormatDateTime = "date-time"
	FormatDate     = "date"
	FormatUUID     = "uuid"
)

var formatPatterns = map[string]*regexp.Regexp{
	FormatDateTime: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`), // 2006-01-02T15:04:05Z
	FormatDate:     regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),                                              // 2006-01-02
	FormatUUID:     regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
}

// DetectFormat returns the first format s matches, or "" if none does.
func DetectFormat(s string) string {
	// Ordered by specificity
	for _, f := range []string{FormatUUID, FormatDateTime, FormatDate} {
		if formatPatterns[f].MatchString(s) {
			return f
		}
	}
	return ""
}

package export

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/style"
)

const maxSanitizedLength = 20

// SanitizeValue lowercases value, replaces every character outside [a-z0-9]
// with '_' and keeps the first 20 characters.
func SanitizeValue(value string) string {
	var b strings.Builder
	n := 0
	for _, r := range value {
		if n == maxSanitizedLength {
			break
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	return b.String()
}

// EntryName is the archive entry name of the 1-based index-th bulk item
func EntryName(index int, value string, format style.Format) string {
	return constant.BulkEntryBase + "_" + strconv.Itoa(index) + "_" + SanitizeValue(value) + "." + format.Raster().Extension()
}

// SingleFileName is the download name of a single export
func SingleFileName(format style.Format) string {
	return constant.SingleFileBase + "." + format.Raster().Extension()
}

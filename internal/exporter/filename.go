package exporter

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
)

// reserved characters that are unsafe in a download filename on the major
// platforms.
const reservedFilenameChars = `<>:"/\|?*`

// ValidateFilename ensures filename is properly formatted and returns it with
// a .csv suffix. Validation is skipped when filename equals the entry point's
// default sentinel. The suffix check compares the last four bytes literally,
// so a name ending in .CSV gets a second suffix appended.
func ValidateFilename(filename string, sentinel string) (string, error) {
	if filename != sentinel {
		filename = strings.TrimSpace(filename)
		if n := len(filename); n == 0 || n > 251 {
			return "", errors.Wrapf(internal.ErrInvalidFilename, "filename must be between 1 and 251 characters, current length is %d", n)
		}
		if strings.ContainsAny(filename, reservedFilenameChars) {
			return "", errors.Wrapf(internal.ErrInvalidFilename, `filename can not contain these characters: < > : " / \ | ? *`)
		}
		if strings.HasSuffix(filename, ".") {
			return "", errors.Wrap(internal.ErrInvalidFilename, "filename can not end in a period")
		}
	}
	if len(filename) < 4 || filename[len(filename)-4:] != ".csv" {
		filename += ".csv"
	}
	return filename, nil
}

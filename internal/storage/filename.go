package storage

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const randomComponentLength = 16

var (
	timeNowFunc = time.Now
	randomFunc  = randomComponent
)

// GenerateName returns <unix millis><random>.<ext> for the original file
// name, keeping the extension's case. Names without an extension get no dot.
// Uniqueness is probabilistic: nothing checks the destination for an
// existing file.
func GenerateName(original string) string {
	name := strconv.FormatInt(timeNowFunc().UnixMilli(), 10) + randomFunc()
	if ext := Extension(original); ext != "" {
		name += "." + ext
	}
	return name
}

// Extension returns everything after the last dot of the file name, or ""
// when there is none. Directory components are ignored.
func Extension(original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	dotIndex := strings.LastIndex(base, ".")
	if dotIndex == -1 {
		return ""
	}
	return base[dotIndex+1:]
}

func randomComponent() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:randomComponentLength]
}

package storage

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		original string
		want     string
	}{
		{"photo.PNG", "PNG"},
		{"archive.tar.gz", "gz"},
		{"README", ""},
		{"trailing.", ""},
		{".bashrc", "bashrc"},
		{"../../etc/passwd", ""},
		{"dir.d/file", ""},
		{`C:\Users\me\clip.MOV`, "MOV"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.original))
		})
	}
}

func TestGenerateName_ShouldPrefixTimestampAndKeepExtensionCase(t *testing.T) {
	// given
	restoreNow, restoreRandom := timeNowFunc, randomFunc
	defer func() { timeNowFunc, randomFunc = restoreNow, restoreRandom }()
	timeNowFunc = func() time.Time { return time.UnixMilli(1700000000123) }
	randomFunc = func() string { return "0123456789abcdef" }

	// when
	name := GenerateName("Holiday.JPG")

	// then
	assert.Equal(t, "17000000001230123456789abcdef.JPG", name)
}

func TestGenerateName_ShouldOmitDotWithoutExtension(t *testing.T) {
	// given
	restoreRandom := randomFunc
	defer func() { randomFunc = restoreRandom }()
	randomFunc = func() string { return "r" }

	// when
	name := GenerateName("Makefile")

	// then
	assert.False(t, strings.Contains(name, "."))
	assert.True(t, strings.HasSuffix(name, "r"))
}

func TestGenerateName_ShouldNotCollideUnderConcurrency(t *testing.T) {
	// given
	const n = 2000
	names := make([]string, n)
	var wg sync.WaitGroup

	// when
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i] = GenerateName("photo.png")
		}(i)
	}
	wg.Wait()

	// then
	seen := make(map[string]bool, n)
	for _, name := range names {
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestRandomComponent_ShouldBeFixedLengthHex(t *testing.T) {
	// when
	component := randomComponent()

	// then
	assert.Len(t, component, randomComponentLength)
	assert.Empty(t, strings.Trim(component, "0123456789abcdef"))
}

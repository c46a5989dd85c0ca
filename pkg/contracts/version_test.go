package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFullVersionString(t *testing.T) {
	s := GetFullVersionString()

	assert.True(t, strings.HasPrefix(s, "reportcards v"+Version))
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Equal(t, runtime.Version(), GetVersionInfo().GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, GetVersionInfo().Platform)
}

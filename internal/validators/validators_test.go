package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("jane@example.com"))
	assert.False(t, IsEmail("jane@"))
	assert.False(t, IsEmail(""))
}

func TestCustomTags(t *testing.T) {
	assert.NoError(t, Var("08:30", "hhmm"))
	assert.Error(t, Var("8:30", "hhmm"))
	assert.Error(t, Var("24:00", "hhmm"))

	assert.NoError(t, Var("0712345678", "kephone"))
	assert.NoError(t, Var("+254712345678", "kephone"))
	assert.Error(t, Var("0812345678", "kephone"))
}

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTitle(t *testing.T) {
	title, err := ValidateTitle("  The Matrix ")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", title)

	_, err = ValidateTitle("   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ValidateTitle(strings.Repeat("a", maxTitleLength+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateUsernameKeepsCase(t *testing.T) {
	name, err := ValidateUsername(" Alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = ValidateUsername("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "alice", SafeFilename("alice"))
	assert.Equal(t, "Mary_Jane", SafeFilename("Mary Jane"))
	assert.Equal(t, "_etc_passwd", SafeFilename("../etc/passwd"))
	assert.Equal(t, "user", SafeFilename(".."))
}

func TestValidateOMDbResponse(t *testing.T) {
	assert.NoError(t, ValidateOMDbResponse([]byte(`{"Response":"True","Title":"Alien","Year":"1979","imdbRating":"8.5"}`)))
	assert.NoError(t, ValidateOMDbResponse([]byte(`{"Response":"False","Error":"Movie not found!"}`)))

	assert.Error(t, ValidateOMDbResponse([]byte(`{"Title":"Alien"}`)))
	assert.Error(t, ValidateOMDbResponse([]byte(`{"Response":"Maybe"}`)))
	assert.Error(t, ValidateOMDbResponse([]byte(`{"Response":"True","imdbRating":8.5}`)))
	assert.Error(t, ValidateOMDbResponse([]byte(`not json`)))
}

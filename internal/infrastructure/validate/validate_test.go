package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	assert.Error(t, Required()(""))
	assert.Error(t, Required()("   "))
	assert.NoError(t, Required()("x"))
}

func TestEmail(t *testing.T) {
	v := Email()

	assert.NoError(t, v("clerk@example.org"))
	assert.NoError(t, v(""), "empty input is left to Required")
	assert.Error(t, v("not-an-email"))
	assert.Error(t, v("Clerk <clerk@example.org>"))
}

func TestOneOf(t *testing.T) {
	v := OneOf("admin", "forensic")

	assert.NoError(t, v("admin"))
	assert.EqualError(t, v("Admin"), "must be one of: admin, forensic")
}

func TestField_PrefixesName(t *testing.T) {
	v := Field("email", Required(), Email())

	assert.EqualError(t, v(""), "email: this field is required")
	assert.EqualError(t, v("bad"), "email: must be a valid email address")
	assert.NoError(t, v("a@b.co"))
}

func TestCompose_FirstErrorWins(t *testing.T) {
	v := Compose(MinLength(3), MaxLength(5), NoSpaces())

	assert.EqualError(t, v("ab"), "must be at least 3 characters")
	assert.EqualError(t, v("abcdef"), "must be no more than 5 characters")
	assert.EqualError(t, v("a b c"), "must not contain spaces")
	assert.NoError(t, v("abcd"))
}

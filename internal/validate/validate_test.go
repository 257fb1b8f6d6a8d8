package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cardauction/internal/domain"
	"cardauction/internal/validate"
)

func TestLookupIDToleratesOverflow(t *testing.T) {
	n, ok := validate.LookupID("99999999999999999999")
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = validate.LookupID(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = validate.LookupID("twelve")
	assert.False(t, ok)

	_, ok = validate.Int("99999999999999999999")
	assert.False(t, ok, "strict parsing still rejects overflow")
}

func TestCardID(t *testing.T) {
	n, ok := validate.CardID(domain.KindCollector, "30")
	assert.True(t, ok)
	assert.Equal(t, 30, n)

	_, ok = validate.CardID(domain.KindCollector, "31")
	assert.False(t, ok)
	_, ok = validate.CardID(domain.KindItem, "abc")
	assert.False(t, ok)
}

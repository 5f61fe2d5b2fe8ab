package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSixID_StringParse(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := NewSixID()
		s := id.String()
		require.Len(t, s, 10)

		parsed, err := ParseSixID(s)
		require.NoError(t, err)
		assert.Equal(t, id, parsed)

		lower, err := ParseSixID(strings.ToLower(s))
		require.NoError(t, err)
		assert.Equal(t, id, lower)
	}
}

func TestParseSixID_Invalid(t *testing.T) {
	for _, s := range []string{"", "ABC", "0123456789A", "U123456789", "!!!!!!!!!!"} {
		_, err := ParseSixID(s)
		assert.ErrorIs(t, err, ErrInvalidSixID, s)
	}
}

func TestSixID_ConfusedCharacters(t *testing.T) {
	a, err := ParseSixID("O1000000I0")
	require.NoError(t, err)
	b, err := ParseSixID("01000000l0")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSixID_BSON(t *testing.T) {
	type doc struct {
		ID SixID `bson:"_id"`
	}
	in := doc{ID: NewSixID()}
	raw, err := bson.Marshal(in)
	require.NoError(t, err)

	var out doc
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, in.ID, out.ID)
}

func TestSixID_JSONZero(t *testing.T) {
	var id SixID
	b, err := id.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `""`, string(b))
	assert.True(t, id.IsZero())
}

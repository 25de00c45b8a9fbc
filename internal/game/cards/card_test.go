package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalizes(t *testing.T) {
	c, err := Parse(" th ")
	require.NoError(t, err)
	assert.Equal(t, "TH", c.String())
	assert.Equal(t, 0, c.Value())
}

func TestParseRejects(t *testing.T) {
	for _, s := range []string{"", "1H", "10H", "AX", "A", "HA", "AHH"} {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidCard, s)
	}
}

func TestValue(t *testing.T) {
	tests := map[string]int{
		"AH": 1, "2D": 2, "5C": 5, "9S": 9,
		"TH": 0, "JD": 0, "QC": 0, "KS": 0,
	}
	for s, want := range tests {
		assert.Equal(t, want, MustParse(s).Value(), s)
	}
}

func TestScoreIsModTen(t *testing.T) {
	hand, err := ParseAll("9H", "8D", "7C")
	require.NoError(t, err)
	assert.Equal(t, 4, Score(hand))
	assert.Equal(t, 0, Score(nil))
}

func TestIsPair(t *testing.T) {
	assert.True(t, IsPair([]Card{MustParse("8H"), MustParse("8S")}))
	assert.False(t, IsPair([]Card{MustParse("8H"), MustParse("9S")}))
	assert.False(t, IsPair([]Card{MustParse("8H"), MustParse("8S"), MustParse("8D")}))
}

func TestAllHasFiftyTwoUnique(t *testing.T) {
	all := All()
	require.Len(t, all, 52)
	seen := make(map[Card]bool)
	for _, c := range all {
		assert.False(t, seen[c])
		seen[c] = true
	}
}

func TestJSONText(t *testing.T) {
	data, err := json.Marshal([]Card{MustParse("as"), MustParse("kd")})
	require.NoError(t, err)
	assert.JSONEq(t, `["AS","KD"]`, string(data))

	var back []Card
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "AS", back[0].String())

	var bad Card
	assert.Error(t, json.Unmarshal([]byte(`"ZZ"`), &bad))
}

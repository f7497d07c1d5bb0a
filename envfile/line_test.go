package envfile_test

import (
	"testing"

	"github.com/riseshia/envdb/envfile"
	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind envfile.LineKind
		pair envfile.Pair
	}{
		{"pair", "DB_HOST=localhost", envfile.KindPair, envfile.Pair{Key: "DB_HOST", Value: "localhost"}},
		{"empty value", "EMPTY=", envfile.KindPair, envfile.Pair{Key: "EMPTY", Value: ""}},
		{"value with equals", "DSN=user=a;pass=b", envfile.KindPair, envfile.Pair{Key: "DSN", Value: "user=a;pass=b"}},
		{"whitespace kept", "  SPACED = v ", envfile.KindPair, envfile.Pair{Key: "  SPACED ", Value: " v "}},
		{"empty key", "=orphan", envfile.KindPair, envfile.Pair{Key: "", Value: "orphan"}},
		{"comment", "# Database config", envfile.KindComment, envfile.Pair{}},
		{"comment with equals", "#A=1", envfile.KindComment, envfile.Pair{}},
		{"no equals", "NO_VALUE", envfile.KindUnrecognized, envfile.Pair{}},
		{"blank", "", envfile.KindUnrecognized, envfile.Pair{}},
		{"indented comment", "  # not a comment", envfile.KindUnrecognized, envfile.Pair{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := envfile.ParseLine(tt.raw)
			assert.Equal(t, tt.kind, line.Kind)
			assert.Equal(t, tt.raw, line.Raw)
			assert.Equal(t, tt.pair, line.Pair)
		})
	}
}

func TestPairString(t *testing.T) {
	assert.Equal(t, "K=v=w", envfile.Pair{Key: "K", Value: "v=w"}.String())
	assert.Equal(t, "K=", envfile.Pair{Key: "K"}.String())
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "pair", envfile.KindPair.String())
	assert.Equal(t, "comment", envfile.KindComment.String())
	assert.Equal(t, "unrecognized", envfile.KindUnrecognized.String())
}

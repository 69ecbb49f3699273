package titan_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/titan"
	"github.com/stretchr/testify/assert"
)

func TestDecorateMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		reasoning bool
		want      string
	}{
		{"reasoning on", "explain", true, "explain /think"},
		{"reasoning off", "explain", false, "explain /no_think"},
		{"trims before decorating", "  explain \n", true, "explain /think"},
		{"keeps explicit think", "explain /think", false, "explain /think"},
		{"keeps explicit no_think", "/no_think explain", true, "/no_think explain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, titan.DecorateMessage(tt.text, tt.reasoning))
		})
	}
}

func TestValidateMessage(t *testing.T) {
	t.Parallel()
	assert.NoError(t, titan.ValidateMessage("hi"))
	assert.NoError(t, titan.ValidateMessage(strings.Repeat("é", titan.MaxMessageLength)))
	assert.ErrorIs(t, titan.ValidateMessage(""), titan.ErrValidation)
	assert.ErrorIs(t, titan.ValidateMessage(" \t\n"), titan.ErrValidation)
	assert.ErrorIs(t, titan.ValidateMessage(strings.Repeat("x", titan.MaxMessageLength+1)), titan.ErrValidation)
}

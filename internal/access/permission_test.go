package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAll(t *testing.T) {
	granted := []string{"profile.read", "tokens.issue", "mail.send"}

	tests := []struct {
		name      string
		requested []string
		want      bool
	}{
		{"empty request satisfied", nil, true},
		{"empty slice satisfied", []string{}, true},
		{"single granted", []string{"mail.send"}, true},
		{"all granted", []string{"profile.read", "tokens.issue", "mail.send"}, true},
		{"missing element", []string{"profile.write"}, false},
		{"mixed granted and missing", []string{"profile.read", "profile.write"}, false},
		{"duplicate requests irrelevant", []string{"mail.send", "mail.send"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAll(granted, tt.requested))
		})
	}

	t.Run("empty granted denies non-empty request", func(t *testing.T) {
		assert.False(t, HasAll(nil, []string{"anything"}))
	})
}

package jid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalPart(t *testing.T) {
	assert.Equal(t, "5511999999999", LocalPart("5511999999999@c.us"))
	assert.Equal(t, "plain", LocalPart("plain"))
	assert.Equal(t, "", LocalPart(""))
}

func TestIsGroup(t *testing.T) {
	assert.True(t, IsGroup("120363025246125486@g.us"))
	assert.False(t, IsGroup("5511999999999@c.us"))
	assert.False(t, IsGroup("nothing"))
}

func TestPhoneNumber(t *testing.T) {
	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"5511999999999@c.us", "5511999999999", true},
		{"5511999999999@s.whatsapp.net", "5511999999999", true},
		{"5511999999999:12@s.whatsapp.net", "5511999999999", true},
		{"100200300400500600@g.us", "", false},
		{"100200300400500600@c.us", "", false},
		{"123456789012345@lid", "", false},
		{"0511999999999@c.us", "", false},
		{"12345@c.us", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := PhoneNumber(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

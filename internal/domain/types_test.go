package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTxHash(t *testing.T) {
	testCases := []struct {
		name string
		hash string
		want bool
	}{
		{
			name: "valid lowercase",
			hash: "0x" + strings.Repeat("a", 64),
			want: true,
		},
		{
			name: "valid mixed case",
			hash: "0xAbCdEf0123456789aBcDeF0123456789abcdef0123456789ABCDEF0123456789",
			want: true,
		},
		{
			name: "missing prefix",
			hash: strings.Repeat("a", 64),
			want: false,
		},
		{
			name: "too short",
			hash: "0x" + strings.Repeat("a", 63),
			want: false,
		},
		{
			name: "too long",
			hash: "0x" + strings.Repeat("a", 65),
			want: false,
		},
		{
			name: "non-hex characters",
			hash: "0x" + strings.Repeat("g", 64),
			want: false,
		},
		{
			name: "empty",
			hash: "",
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidTxHash(tc.hash))
		})
	}
}

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress("0x31F02Ed2c900A157C851786B43772F86151C7E34"))
	assert.False(t, IsValidAddress("0x31F02Ed2c900A157C851786B43772F86151C7E3"))
	assert.False(t, IsValidAddress("31F02Ed2c900A157C851786B43772F86151C7E34"))
	assert.False(t, IsValidAddress(""))
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress(
		"0x31F02Ed2c900A157C851786B43772F86151C7E34",
		"0x31f02ed2c900a157c851786b43772f86151c7e34",
	))
	assert.False(t, SameAddress(
		"0x31F02Ed2c900A157C851786B43772F86151C7E34",
		"0x0000000000000000000000000000000000000000",
	))
}

func TestButtonVisualsExclusive(t *testing.T) {
	color := "#3b82f6"
	emoji := "🔗"
	image := "https://example.com/button.png"
	empty := ""

	testCases := []struct {
		name    string
		visuals ButtonVisuals
		want    bool
	}{
		{
			name:    "color only",
			visuals: ButtonVisuals{ButtonColor: &color},
			want:    true,
		},
		{
			name:    "color and emoji",
			visuals: ButtonVisuals{ButtonColor: &color, ButtonEmoji: &emoji},
			want:    true,
		},
		{
			name:    "image only",
			visuals: ButtonVisuals{ButtonImageURL: &image},
			want:    true,
		},
		{
			name:    "image and color",
			visuals: ButtonVisuals{ButtonImageURL: &image, ButtonColor: &color},
			want:    false,
		},
		{
			name:    "image and emoji",
			visuals: ButtonVisuals{ButtonImageURL: &image, ButtonEmoji: &emoji},
			want:    false,
		},
		{
			name:    "image with empty color",
			visuals: ButtonVisuals{ButtonImageURL: &image, ButtonColor: &empty},
			want:    true,
		},
		{
			name:    "nothing set",
			visuals: ButtonVisuals{},
			want:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.visuals.Exclusive())
		})
	}
}

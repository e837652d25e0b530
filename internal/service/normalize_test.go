package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"punctuation only", "!!! ??? ...", ""},
		{"lowercases", "Smart Attendance SYSTEM", "smart attendance system"},
		{"strips punctuation", "IoT-based Health: Monitoring!", "iot health monitoring"},
		{"drops stopwords", "detection of fraud using machine learning", "detection fraud machine learning"},
		{"drops single chars", "a b c project x", "project"},
		{"collapses whitespace", "smart   city\t\tplanning", "smart city planning"},
		{"keeps digits", "covid 19 tracker", "covid 19 tracker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Smart Attendance System using Face Recognition",
		"!!!",
		"A Blockchain-Based Voting Platform (2024 edition)",
		"   mixed \t CASE   and-punctuation?!  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

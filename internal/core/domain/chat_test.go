package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCitation_FormatRelevance(t *testing.T) {
	tests := []struct {
		score    float64
		percent  float64
		rendered string
	}{
		{0.92, 92.0, "92.0%"},
		{0.8765, 87.7, "87.7%"},
		{1, 100, "100.0%"},
		{0, 0, "0.0%"},
		{0.12345, 12.3, "12.3%"},
	}

	for _, tt := range tests {
		c := Citation{RelevanceScore: tt.score}
		assert.InDelta(t, tt.percent, c.RelevancePercent(), 1e-9)
		assert.Equal(t, tt.rendered, c.FormatRelevance())
	}
}

func TestGroundingLabel(t *testing.T) {
	yes, no := true, false

	assert.Equal(t, "grounded", GroundingLabel(&yes))
	assert.Equal(t, "limited information", GroundingLabel(&no))
	assert.Equal(t, "", GroundingLabel(nil))
	assert.Equal(t, "grounded", ChatMessage{Grounded: &yes}.GroundingLabel())
}

func TestChatMessage_Clone(t *testing.T) {
	grounded := true
	original := ChatMessage{
		Role:      RoleAssistant,
		Content:   "Yes",
		Citations: []Citation{{PageNumber: 14, RelevanceScore: 0.92}},
		Grounded:  &grounded,
	}

	clone := original.Clone()
	clone.Citations[0].PageNumber = 99
	*clone.Grounded = false

	assert.Equal(t, 14, original.Citations[0].PageNumber)
	assert.True(t, *original.Grounded)
}

func TestChatMessage_CloneWithoutOptionalFields(t *testing.T) {
	clone := ChatMessage{Role: RoleUser, Content: "hi"}.Clone()

	assert.Nil(t, clone.Citations)
	assert.Nil(t, clone.Grounded)
}

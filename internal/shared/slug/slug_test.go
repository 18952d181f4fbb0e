package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromName(t *testing.T) {
	assert.Equal(t, "7-shot-multi-colour", FromName("  7 Shot  (Multi-Colour) ", "product"))
	assert.Equal(t, "flower-pots-big", FromName("Flower Pots -- BIG", "product"))
	assert.Equal(t, "gift-box", FromName("!!!", "gift-box"))
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventory_TryConsume(t *testing.T) {
	inv := NewInventory()
	inv.Add("potion", 2)

	assert.True(t, inv.TryConsume("potion", 1))
	assert.Equal(t, int32(1), inv.Count("potion"))

	assert.False(t, inv.TryConsume("potion", 2), "not enough stock")
	assert.Equal(t, int32(1), inv.Count("potion"), "failed consume changes nothing")

	assert.True(t, inv.TryConsume("potion", 1))
	assert.Empty(t, inv.Items(), "empty entries are dropped")

	assert.False(t, inv.TryConsume("ether", 1))
	assert.False(t, inv.TryConsume("potion", 0))
}

func TestInventory_Add(t *testing.T) {
	inv := NewInventory()
	inv.Add("potion", 1)
	inv.Add("ether", 3)
	inv.Add("potion", 2)
	inv.Add("bomb", 0)
	inv.Add("", 5)

	assert.Equal(t, []ItemCount{
		{ItemID: "potion", Count: 3},
		{ItemID: "ether", Count: 3},
	}, inv.Items())
}

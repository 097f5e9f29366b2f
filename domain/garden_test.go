package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMembershipChecks(t *testing.T) {
	garden := &Garden{
		ID:         "g1",
		ManagerIDs: []string{"alice", "bob"},
		PickerIDs:  []string{"pat"},
	}
	plot := &Plot{
		ID:          "p1",
		GardenID:    "g1",
		GardenerIDs: []string{"carol"},
	}

	assert.True(t, garden.HasManager("alice"))
	assert.False(t, garden.HasManager("carol"))
	assert.False(t, garden.HasManager(""))
	assert.True(t, garden.HasPicker("pat"))
	assert.False(t, garden.HasPicker("alice"))
	assert.True(t, plot.HasGardener("carol"))
	assert.False(t, plot.HasGardener("bob"))

	var nilGarden *Garden
	var nilPlot *Plot
	assert.False(t, nilGarden.HasManager("alice"))
	assert.False(t, nilPlot.HasGardener("carol"))
}

func TestUserNames(t *testing.T) {
	user := &User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", user.FullName())
	assert.Equal(t, "Ada", user.ShortName())

	partial := &User{FirstName: "Ada"}
	assert.Equal(t, "Ada", partial.FullName())

	var nobody *User
	assert.Equal(t, "", nobody.FullName())
	assert.False(t, nobody.CanAuthenticate())
	assert.False(t, (&User{}).CanAuthenticate())
	assert.True(t, (&User{IsActive: true}).CanAuthenticate())
}

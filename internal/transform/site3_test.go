package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSite3Defaults(t *testing.T) {
	got, res := transformMap(t, NewSite3(nil), raw("Type of body", "Hatchback"))
	assert.Empty(t, res.Issues)
	assert.Equal(t, "Hatchback", got["body_type"])
	assert.Equal(t, defaultSuspension, got["braking_system_1"])
	assert.Equal(t, defaultBrakes, got["braking_system_2"])
}

func TestSite3Composites(t *testing.T) {
	got, _ := transformMap(t, NewSite3(nil), raw(
		"Front suspension", "MacPherson - coil springs",
		"Rear suspension", "Multilink - coil springs",
		"Front brakes", "Ventilated discs",
		"Rear brakes", "Drums",
		"Steering, method of assistance", "Electric",
		"Number and configuration of doors", "5 doors",
		"Number and position of seats", "5",
		"Powertrain architecture", "Plug-in hybrid",
	))
	assert.Equal(t, "MacPherson/Multilink", got["braking_system_1"])
	assert.Equal(t, "Ventilated discs/Drums", got["braking_system_2"])
	assert.Equal(t, "Electric", got["steering_assistance"])
	assert.Equal(t, "5 doors", got["doors_config"])
	assert.Equal(t, "5", got["seats_config"])
	assert.Equal(t, "Plug-in hybrid", got["fuel"])
}

func TestSite3HalfSuspensionFallsBackToDefault(t *testing.T) {
	got, _ := transformMap(t, NewSite3(nil), raw("Front suspension", "MacPherson"))
	assert.Equal(t, defaultSuspension, got["braking_system_1"])
}

func TestForSource(t *testing.T) {
	for _, s := range []string{Site1, Site2, Site3} {
		tr, err := ForSource(s, nil)
		assert.NoError(t, err)
		assert.Equal(t, s, tr.Source)
	}
	_, err := ForSource("site4", nil)
	assert.Error(t, err)
}

package transform

import (
	"strings"

	"homologation/internal/logger"
)

const (
	s3FrontSuspension = "Front suspension"
	s3RearSuspension  = "Rear suspension"
	s3FrontBrakes     = "Front brakes"
	s3RearBrakes      = "Rear brakes"

	defaultSuspension = "Independent type McPherson/Semi independent multilink"
	defaultBrakes     = "Ventilated discs/Ventilated discs"
)

var site3Mapping = oneToOne(map[string]string{
	"Type of body":                      "body_type",
	"Steering, method of assistance":    "steering_assistance",
	"Number and configuration of doors": "doors_config",
	"Number and position of seats":      "seats_config",
	"Powertrain architecture":           "fuel",
})

// NewSite3 builds the transformer for the specification database pages.
func NewSite3(log *logger.Logger) *Transformer {
	return &Transformer{
		Source:  Site3,
		Mapping: site3Mapping,
		Log:     log.With("source", Site3),
		Rules: []Rule{
			{Name: "suspension", Reads: []string{s3FrontSuspension, s3RearSuspension}, Defaults: true, Apply: s3Suspension},
			{Name: "brakes", Reads: []string{s3FrontBrakes, s3RearBrakes}, Defaults: true, Apply: s3Brakes},
		},
	}
}

// s3Suspension keeps the part before the first dash of each axle's
// description, e.g. "MacPherson - coil springs".
func s3Suspension(t *Table) error {
	front, okF := t.Get(s3FrontSuspension)
	rear, okR := t.Get(s3RearSuspension)
	if !okF || !okR {
		t.Set("braking_system_1", defaultSuspension)
		return nil
	}
	f := strings.TrimSpace(strings.Split(front, "-")[0])
	r := strings.TrimSpace(strings.Split(rear, "-")[0])
	t.Set("braking_system_1", f+"/"+r)
	return nil
}

func s3Brakes(t *Table) error {
	front, okF := t.Get(s3FrontBrakes)
	rear, okR := t.Get(s3RearBrakes)
	if !okF || !okR {
		t.Set("braking_system_2", defaultBrakes)
		return nil
	}
	t.Set("braking_system_2", front+"/"+rear)
	return nil
}

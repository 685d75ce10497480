package models

import (
	"strings"
	"time"
)

type Address struct {
	Street  string
	City    string
	State   string
	Country string
	Zip     string
}

// Profile holds optional account metadata. It is created empty when the
// account's email is verified.
type Profile struct {
	ID              string
	AccountID       string
	Bio             string
	Skills          []string
	YearsExperience *int
	HourlyRate      *float64
	Address         Address
	Website         string
	LinkedIn        string
	GitHub          string
	Twitter         string
	ProfileImage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasAddress reports whether any address field is set
func (p *Profile) HasAddress() bool {
	return p.Address != Address{}
}

// FullAddress renders the address as a single comma-separated line
func (a Address) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{a.Street, a.City, a.State, a.Zip, a.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique "person" or "account".
// It contains only the most fundamental identity information shared across all roles.
type User struct {
	ID               uuid.UUID         // The Global Unique Identifier (GUID) for the user.
	Email            string            // The user's primary contact email, used as the login identifier.
	Name             string            // The user's display name or real name.
	EmailConfirmedAt *time.Time        // When the user confirmed their email address. Nil while unconfirmed.
	Credentials      *Credentials      // The user's password credential and revocation version.
	PassengerProfile *PassengerProfile // A pointer to the passenger-specific profile. Nil if this person never rides.
	DriverProfile    *DriverProfile    // A pointer to the driver-specific profile. Nil if this person never publishes routes.
	CreatedAt        time.Time         // Timestamp of when this user account was created.
	UpdatedAt        time.Time         // Timestamp of the last modification to this user's data.
}

// EmailConfirmed reports whether the user completed email confirmation.
func (u *User) EmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// Roles derives the user's roles from the attached profiles.
func (u *User) Roles() Roles {
	var roles Roles
	if u.PassengerProfile != nil {
		roles = append(roles, RolePassenger)
	}
	if u.DriverProfile != nil {
		roles = append(roles, RoleDriver)
	}

	return roles
}

// PassengerProfile holds data specific to the "passenger" role.
type PassengerProfile struct {
	UserID               uuid.UUID // Foreign Key that links this profile to a core User entity.
	DefaultPickupAddress string    // The passenger's preferred pickup point for ride matching.
	CompletedRides       int       // Number of completed rides, shown next to reviews.
	UpdatedAt            time.Time // Timestamp of the last modification to this profile.
}

// DriverProfile holds data specific to the "driver" role.
type DriverProfile struct {
	UserID         uuid.UUID // Foreign Key that links this profile to a core User entity.
	LicencePlate   string    // The vehicle's licence plate number.
	VehicleModel   string    // Make and model shown to passengers before booking.
	SeatCount      int       // Seats offered per published route.
	DrivingLicence string    // The driver's official driving licence number.
	UpdatedAt      time.Time // Timestamp of the last modification to this profile.
}

// Package model defines the GORM models mapped to the database schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel is the database model for user accounts.
type UserModel struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Email            string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	Name             string     `gorm:"column:name;type:varchar(100);not null"`
	EmailConfirmedAt *time.Time `gorm:"column:email_confirmed_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;not null"`

	Credentials      *CredentialsModel      `gorm:"foreignKey:UserID"`
	PassengerProfile *PassengerProfileModel `gorm:"foreignKey:UserID"`
	DriverProfile    *DriverProfileModel    `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// CredentialsModel stores the password hash and the credential version counter.
// The version participates in token validity: refresh and email tokens embed
// the version at issue time and are rejected once the counter moves past it.
type CredentialsModel struct {
	UserID            uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Version           int       `gorm:"column:version;not null;default:0"`
	PasswordHash      string    `gorm:"column:password_hash;type:varchar(255);not null"`
	LastPasswordHash  string    `gorm:"column:last_password_hash;type:varchar(255)"`
	PasswordUpdatedAt time.Time `gorm:"column:password_updated_at;not null"`
	UpdatedAt         time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for CredentialsModel
func (CredentialsModel) TableName() string {
	return "user_credentials"
}

// PassengerProfileModel is the database model for passenger profiles.
type PassengerProfileModel struct {
	UserID               uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	DefaultPickupAddress string    `gorm:"column:default_pickup_address;type:varchar(255)"`
	CompletedRides       int       `gorm:"column:completed_rides;not null;default:0"`
	UpdatedAt            time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for PassengerProfileModel
func (PassengerProfileModel) TableName() string {
	return "passenger_profiles"
}

// DriverProfileModel is the database model for driver profiles.
type DriverProfileModel struct {
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	LicencePlate   string    `gorm:"column:licence_plate;type:varchar(20);uniqueIndex;not null"`
	VehicleModel   string    `gorm:"column:vehicle_model;type:varchar(100)"`
	SeatCount      int       `gorm:"column:seat_count;not null;default:4"`
	DrivingLicence string    `gorm:"column:driving_licence;type:varchar(50);not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`
}

// TableName specifies the table name for DriverProfileModel
func (DriverProfileModel) TableName() string {
	return "driver_profiles"
}

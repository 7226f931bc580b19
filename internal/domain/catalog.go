package domain

import "time"

// Brand is a vehicle make (e.g. Toyota, BMW). Reference data: publicly
// readable, mutable only by admins.
type Brand struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:ux_brands_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Brand.
func (Brand) TableName() string { return "brands" }

// Model is a vehicle model under a brand (e.g. Corolla, Mustang).
type Model struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	BrandID   string    `json:"brand_id" gorm:"type:char(36);not null;index"`
	Name      string    `json:"name"     gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Brand is the owning make. Models are cascade-deleted with it.
	Brand Brand `json:"-" gorm:"foreignKey:BrandID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Model.
func (Model) TableName() string { return "models" }

// Feature is a named vehicle option such as Sunroof or Bluetooth, attached
// to listings through ListingFeature.
type Feature struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:ux_features_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Feature.
func (Feature) TableName() string { return "features" }

package domain

import "time"

// Body type values accepted for a listing.
const (
	BodySedan     = "Sedan"
	BodySUV       = "SUV"
	BodyTruck     = "Truck"
	BodyHatchback = "Hatchback"
	BodyCoupe     = "Coupe"
)

// Transmission values accepted for a listing.
const (
	TransmissionAutomatic = "Automatic"
	TransmissionManual    = "Manual"
)

// Fuel type values accepted for a listing.
const (
	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelElectric = "Electric"
)

// Condition values accepted for a listing.
const (
	ConditionNew  = "New"
	ConditionUsed = "Used"
)

// Listing represents a vehicle for sale: the central catalog record. The
// seller is stamped from the authenticated caller at creation and never
// accepted from the payload. The buyer reference is optional and protected:
// a user referenced here cannot be deleted.
type Listing struct {
	ID      string  `json:"id"        gorm:"type:char(36);primaryKey"`
	SellerID string `json:"seller_id" gorm:"type:char(36);not null;index"`
	BuyerID *string `json:"buyer_id,omitempty" gorm:"type:char(36);index"`
	ModelID string  `json:"model_id"  gorm:"type:char(36);not null;index"`

	BodyType     string `json:"body_type"    gorm:"type:varchar(20);not null;check:body_type IN ('Sedan','SUV','Truck','Hatchback','Coupe')"`
	Transmission string `json:"transmission" gorm:"type:varchar(20);not null;check:transmission IN ('Automatic','Manual')"`
	FuelType     string `json:"fuel_type"    gorm:"type:varchar(20);not null;check:fuel_type IN ('Petrol','Diesel','Electric')"`
	Condition    string `json:"condition"    gorm:"type:varchar(10);not null;check:condition IN ('New','Used')"`

	Mileage    int    `json:"mileage"`
	Price      int    `json:"price" gorm:"index"`
	Views      int    `json:"views" gorm:"not null;default:0;index"`
	Year       int    `json:"year"  gorm:"index"`
	Color      string `json:"color"       gorm:"type:varchar(50)"`
	VIN        string `json:"vin"         gorm:"column:vin;type:varchar(50);not null;uniqueIndex:ux_listings_vin"`
	Cylinders  int    `json:"cylinders"`
	EngineSize int    `json:"engine_size"`
	Doors      int    `json:"doors"`

	Description string `json:"description" gorm:"type:text"`
	Location    string `json:"location"    gorm:"type:varchar(255)"`
	History     string `json:"history"     gorm:"type:text"`

	// Creators must set this explicitly. A default tag here would make
	// GORM omit the zero value false at insert and the column default
	// would win, so an inactive row could never be created.
	IsActive  bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Seller owns the listing; their deletion removes it. Buyer deletion is
	// blocked at the database level while this row references them.
	Seller User   `json:"-" gorm:"foreignKey:SellerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Buyer  *User  `json:"-" gorm:"foreignKey:BuyerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Model  Model  `json:"-" gorm:"foreignKey:ModelID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Images   []ListingImage   `json:"-" gorm:"foreignKey:ListingID"`
	Features []ListingFeature `json:"-" gorm:"foreignKey:ListingID"`
}

// TableName returns the database table name for Listing.
func (Listing) TableName() string { return "listings" }

// ListingImage stores one image URL attached to a listing.
type ListingImage struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ListingID string    `json:"listing_id" gorm:"type:char(36);not null;index"`
	URL       string    `json:"url"        gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ListingImage.
func (ListingImage) TableName() string { return "listing_images" }

// ListingFeature maps a listing to a feature. The (listing, feature) pair is
// unique so a feature can be attached at most once.
type ListingFeature struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ListingID string    `json:"listing_id" gorm:"type:char(36);not null;uniqueIndex:ux_listing_feature,priority:1"`
	FeatureID string    `json:"feature_id" gorm:"type:char(36);not null;uniqueIndex:ux_listing_feature,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Feature Feature `json:"-" gorm:"foreignKey:FeatureID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ListingFeature.
func (ListingFeature) TableName() string { return "listing_features" }

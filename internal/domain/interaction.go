package domain

import "time"

// Favorite marks a listing as saved by a user. The (user, listing) pair is
// unique: favoriting twice is a constraint violation, not a second row.
type Favorite struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;uniqueIndex:ux_fav_user_listing,priority:1"`
	ListingID string    `json:"listing_id" gorm:"type:char(36);not null;uniqueIndex:ux_fav_user_listing,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Listing Listing `json:"-" gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Favorite.
func (Favorite) TableName() string { return "favorites" }

// Chat is a conversation between a buyer and the seller of one listing. The
// buyer is stamped from the caller at creation; the seller and listing come
// from the listing row itself.
type Chat struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	BuyerID   string    `json:"buyer_id"   gorm:"type:char(36);not null;index:idx_chats_buyer"`
	SellerID  string    `json:"seller_id"  gorm:"type:char(36);not null;index:idx_chats_seller"`
	ListingID string    `json:"listing_id" gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Buyer   User    `json:"-" gorm:"foreignKey:BuyerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Seller  User    `json:"-" gorm:"foreignKey:SellerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Listing Listing `json:"-" gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// Message is a single utterance within a chat. The sender is stamped from
// the caller and must be one of the chat's two participants.
type Message struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	ChatID    string    `json:"chat_id"  gorm:"type:char(36);not null;index:idx_chat_msgs,priority:1"`
	SenderID  string    `json:"sender_id" gorm:"type:char(36);not null;index"`
	Content   string    `json:"content"  gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_msgs,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages are cascade-deleted with their chat.
	Chat   Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Sender User `json:"-" gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Review is a rating left by one user about another, scoped to a listing.
// Replies form a tree through ParentID; the service layer rejects cycles and
// caps the reply depth.
type Review struct {
	ID             string  `json:"id"               gorm:"type:char(36);primaryKey"`
	ReviewerID     string  `json:"reviewer_id"      gorm:"type:char(36);not null;index"`
	ReviewedUserID string  `json:"reviewed_user_id" gorm:"type:char(36);not null;index"`
	ListingID      string  `json:"listing_id"       gorm:"type:char(36);not null;index"`
	ParentID       *string `json:"parent_id,omitempty" gorm:"type:char(36);index"`

	Rating    int       `json:"rating" gorm:"not null;index;check:rating BETWEEN 1 AND 5"`
	Text      string    `json:"text"   gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Reviewer     User    `json:"-" gorm:"foreignKey:ReviewerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ReviewedUser User    `json:"-" gorm:"foreignKey:ReviewedUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Listing      Listing `json:"-" gorm:"foreignKey:ListingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Parent       *Review `json:"-" gorm:"foreignKey:ParentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// Notification type values.
const (
	NotificationMessage   = "message"
	NotificationSold      = "vehicle_sold"
	NotificationPriceDrop = "price_drop"
)

// Notification is a typed, per-user event record with a read flag. Listing
// is ordered newest-first; mark-all-read flips every unread row in one
// update.
type Notification struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:char(36);not null;index"`
	Type      string    `json:"type"    gorm:"type:varchar(20);not null;check:type IN ('message','vehicle_sold','price_drop')"`
	Body      string    `json:"body"    gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

// Response projections.
//
// The persistence models hide their associations from JSON; these view types
// re-expose the handful of derived fields clients actually need (brand and
// model names, flattened image URLs and feature names, participant handles)
// without leaking whole joined rows.
package handlers

import (
	"github.com/motorhub/go-marketplace-backend/internal/domain"
)

// ListingView is the public projection of a listing. Images and features
// are flattened to plain strings; the catalog names are denormalized so a
// client never needs a second request to render a result page.
type ListingView struct {
	domain.Listing

	BrandName  string   `json:"brand_name"`
	ModelName  string   `json:"model_name"`
	SellerName string   `json:"seller_name"`
	Images     []string `json:"images"`
	Features   []string `json:"features"`
}

// NewListingView projects a listing with its preloaded associations.
func NewListingView(l domain.Listing) ListingView {
	images := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, img.URL)
	}
	features := make([]string, 0, len(l.Features))
	for _, lf := range l.Features {
		features = append(features, lf.Feature.Name)
	}
	return ListingView{
		Listing:    l,
		BrandName:  l.Model.Brand.Name,
		ModelName:  l.Model.Name,
		SellerName: l.Seller.Username,
		Images:     images,
		Features:   features,
	}
}

// NewListingViews projects a page of listings.
func NewListingViews(ls []domain.Listing) []ListingView {
	out := make([]ListingView, 0, len(ls))
	for _, l := range ls {
		out = append(out, NewListingView(l))
	}
	return out
}

// FavoriteView wraps a favorite with the projected listing.
type FavoriteView struct {
	domain.Favorite

	Listing ListingView `json:"listing"`
}

// NewFavoriteView projects a favorite with its preloaded listing.
func NewFavoriteView(f domain.Favorite) FavoriteView {
	return FavoriteView{Favorite: f, Listing: NewListingView(f.Listing)}
}

// NewFavoriteViews projects a page of favorites.
func NewFavoriteViews(fs []domain.Favorite) []FavoriteView {
	out := make([]FavoriteView, 0, len(fs))
	for _, f := range fs {
		out = append(out, NewFavoriteView(f))
	}
	return out
}

// ChatView exposes the participant handles alongside the chat record.
type ChatView struct {
	domain.Chat

	BuyerName  string `json:"buyer_name"`
	SellerName string `json:"seller_name"`
}

// NewChatView projects a chat with its preloaded participants.
func NewChatView(ch domain.Chat) ChatView {
	return ChatView{
		Chat:       ch,
		BuyerName:  ch.Buyer.Username,
		SellerName: ch.Seller.Username,
	}
}

// NewChatViews projects a page of chats.
func NewChatViews(cs []domain.Chat) []ChatView {
	out := make([]ChatView, 0, len(cs))
	for _, ch := range cs {
		out = append(out, NewChatView(ch))
	}
	return out
}

// ReviewView exposes the handles of both parties alongside the review.
type ReviewView struct {
	domain.Review

	ReviewerName     string `json:"reviewer_name"`
	ReviewedUserName string `json:"reviewed_user_name"`
}

// NewReviewView projects a review with its preloaded parties.
func NewReviewView(r domain.Review) ReviewView {
	return ReviewView{
		Review:           r,
		ReviewerName:     r.Reviewer.Username,
		ReviewedUserName: r.ReviewedUser.Username,
	}
}

// NewReviewViews projects a page of reviews.
func NewReviewViews(rs []domain.Review) []ReviewView {
	out := make([]ReviewView, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewReviewView(r))
	}
	return out
}

package models

import "time"

type ContextKey string

type SpaceType string

const (
	SpaceSport     SpaceType = "sport"
	SpaceMeeting   SpaceType = "meeting"
	SpaceCoworking SpaceType = "coworking"
	SpaceEvent     SpaceType = "event"
)

// SpaceTypes lists every space type in display order.
var SpaceTypes = []SpaceType{SpaceSport, SpaceMeeting, SpaceCoworking, SpaceEvent}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Location struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	Coordinates Coordinates `json:"coordinates"`
}

type Space struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         SpaceType  `json:"type"`
	Description  string     `json:"description"`
	Images       []string   `json:"images"`
	Location     Location   `json:"location"`
	Amenities    []string   `json:"amenities"`
	Capacity     int        `json:"capacity"`
	PricePerHour float64    `json:"pricePerHour"`
	Rating       float64    `json:"rating"`
	Reviews      int        `json:"reviews"`
	Availability []TimeSlot `json:"availability,omitempty"`
}

type TimeSlot struct {
	Date        string  `json:"date"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	IsAvailable bool    `json:"isAvailable"`
	Price       float64 `json:"price"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type BookingFilters struct {
	Types      []SpaceType `json:"types,omitempty"`
	Location   string      `json:"location,omitempty"`
	Date       string      `json:"date,omitempty"`
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	Capacity   int         `json:"capacity,omitempty"`
	Amenities  []string    `json:"amenities,omitempty"`
}

type BookingRequest struct {
	SpaceID    string  `json:"spaceId"`
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Duration   int     `json:"duration"`
	TotalPrice float64 `json:"totalPrice"`
	UserWallet string  `json:"userWallet,omitempty"`
}

type PaymentMethod string

const (
	PaymentWallet PaymentMethod = "iota_wallet"
	PaymentCard   PaymentMethod = "stripe"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

type Transaction struct {
	ID                    string         `json:"id"`
	UserID                int64          `json:"userId"`
	BookingRequest        BookingRequest `json:"bookingRequest"`
	PaymentMethod         PaymentMethod  `json:"paymentMethod"`
	PaymentStatus         PaymentStatus  `json:"paymentStatus"`
	TransactionHash       string         `json:"transactionHash,omitempty"`
	StripePaymentIntentID string         `json:"stripePaymentIntentId,omitempty"`
	Amount                float64        `json:"amount"`
	Currency              string         `json:"currency"`
	CreatedAt             time.Time      `json:"createdAt"`
	CompletedAt           *time.Time     `json:"completedAt,omitempty"`
	LoyaltyTokensEarned   int            `json:"loyaltyTokensEarned"`
	LoyaltyTokensUsed     int            `json:"loyaltyTokensUsed"`
	SpaceName             string         `json:"spaceName"`
	SpaceLocation         string         `json:"spaceLocation"`
	UserWalletAddress     string         `json:"userWalletAddress,omitempty"`
}

type BookingHistory struct {
	ID                  string        `json:"id"`
	SpaceName           string        `json:"spaceName"`
	Date                string        `json:"date"`
	Time                string        `json:"time"`
	Status              PaymentStatus `json:"status"`
	Amount              string        `json:"amount"`
	PaymentMethod       PaymentMethod `json:"paymentMethod"`
	LoyaltyTokensEarned int           `json:"loyaltyTokensEarned"`
	LoyaltyTokensUsed   int           `json:"loyaltyTokensUsed"`
	CreatedAt           time.Time     `json:"createdAt"`
}

type TransactionStats struct {
	TotalTransactions  int     `json:"totalTransactions"`
	TotalAmount        float64 `json:"totalAmount"`
	IotaTransactions   int     `json:"iotaTransactions"`
	StripeTransactions int     `json:"stripeTransactions"`
	AverageAmount      float64 `json:"averageAmount"`
}

type LoyaltyTier struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	MinBookings        int    `json:"minBookings"`
	RewardTokens       int    `json:"rewardTokens"`
	DiscountPercentage int    `json:"discountPercentage"`
	Color              string `json:"color"`
	Icon               string `json:"icon"`
}

type LoyaltyProgress struct {
	CurrentBookings       int          `json:"currentBookings"`
	CurrentTier           LoyaltyTier  `json:"currentTier"`
	NextTier              *LoyaltyTier `json:"nextTier,omitempty"`
	ProgressToNextTier    float64      `json:"progressToNextTier"`
	TotalRewardTokens     int          `json:"totalRewardTokens"`
	AvailableRewardTokens int          `json:"availableRewardTokens"`
	UsedRewardTokens      int          `json:"usedRewardTokens"`
}

type TierProgress struct {
	Current    int     `json:"current"`
	Required   int     `json:"required"`
	Remaining  int     `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

type TierBenefits struct {
	TokensPerBooking   int    `json:"tokensPerBooking"`
	DiscountPercentage int    `json:"discountPercentage"`
	Description        string `json:"description"`
}

type PaymentIntent struct {
	ID           string    `json:"id"`
	ClientSecret string    `json:"clientSecret"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	UserID       int64     `json:"userId"`
	SpaceID      string    `json:"spaceId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type WalletState struct {
	IsConnected          bool       `json:"isConnected"`
	WalletName           string     `json:"walletName,omitempty"`
	WalletAddress        string     `json:"walletAddress,omitempty"`
	ConnectedAt          *time.Time `json:"connectedAt,omitempty"`
	IsAutoConnecting     bool       `json:"isAutoConnecting"`
	ManuallyDisconnected bool       `json:"manuallyDisconnected"`
}

// BookingEvent is published on the broker whenever a booking is confirmed or cancelled.
type BookingEvent struct {
	Kind                string        `json:"kind"`
	TransactionID       string        `json:"transactionId"`
	UserID              int64         `json:"userId"`
	UserEmail           string        `json:"userEmail,omitempty"`
	UserName            string        `json:"userName,omitempty"`
	SpaceID             string        `json:"spaceId"`
	SpaceName           string        `json:"spaceName"`
	SpaceLocation       string        `json:"spaceLocation"`
	Date                string        `json:"date"`
	StartTime           string        `json:"startTime"`
	EndTime             string        `json:"endTime"`
	Amount              float64       `json:"amount"`
	Currency            string        `json:"currency"`
	PaymentMethod       PaymentMethod `json:"paymentMethod"`
	LoyaltyTokensEarned int           `json:"loyaltyTokensEarned"`
	OccurredAt          time.Time     `json:"occurredAt"`
}

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
}

package dto

// PlatformStats uses camelCase keys to match the public landing page.
type PlatformStats struct {
	TotalListings     int `json:"totalListings"`
	VerifiedLandlords int `json:"verifiedLandlords"`
	ActiveUsers       int `json:"activeUsers"`
}

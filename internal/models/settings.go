package models

import "time"

// Cache strategies selectable from the admin panel. The strategy only
// affects content endpoints; order state is never cached.
const (
	CacheStrategyISR   = "isr"
	CacheStrategyRedis = "redis"
)

// HomeContent is the content-managed home page blob.
type HomeContent struct {
	Headline     string   `bson:"headline" json:"headline"`
	Tagline      string   `bson:"tagline,omitempty" json:"tagline,omitempty"`
	BannerURLs   []string `bson:"bannerUrls" json:"bannerUrls"`
	Announcement string   `bson:"announcement,omitempty" json:"announcement,omitempty"`
}

// Settings is a singleton document keyed by name "storefront".
type Settings struct {
	Name              string      `bson:"name" json:"name"`
	CacheStrategy     string      `bson:"cacheStrategy" json:"cacheStrategy"`
	ContentTTLSeconds int         `bson:"contentTtlSeconds" json:"contentTtlSeconds"`
	Home              HomeContent `bson:"home" json:"home"`
	UpdatedAt         time.Time   `bson:"updatedAt" json:"updatedAt"`
}

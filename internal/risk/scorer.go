package risk

import (
	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
	"github.com/ejnero-dev/wall-e-research-sub001/internal/intent"
)

// Signal point values. Scoring is strictly additive and capped, never
// multiplicative, so every score decomposes into auditable signals.
const (
	PointsNewAccount      = 20
	PointsUnverified      = 15
	PointsNoPhoto         = 10
	PointsLongDistance    = 15
	PointsLowReputation   = 10
	PointsExternalContact = 40
	PointsOffPlatformPay  = 40
	PointsSuspiciousLink  = 40
	PointsUrgency         = 15

	MaxScore = 100
)

// Trusted-profile floor: buyers at or above these marks contribute zero
// profile signals regardless of distance or photo.
const (
	trustedRating    = 20
	trustedPurchases = 5
)

// DefaultLongDistanceKm is the distance beyond which a buyer counts as remote.
const DefaultLongDistanceKm = 100.0

// Thresholds define the tier cut points: high >= High, medium >= Medium.
type Thresholds struct {
	High   int
	Medium int
}

// DefaultThresholds matches the documented tiers: high >= 70, medium 30-69.
var DefaultThresholds = Thresholds{High: 70, Medium: 30}

// Signal is one scored indicator, tagged for the audit trail.
type Signal struct {
	Tag    string `bson:"tag" json:"tag"`
	Points int    `bson:"points" json:"points"`
}

// Assessment is the scorer's verdict on one message.
type Assessment struct {
	Score   int           `json:"score"`
	Tier    core.RiskTier `json:"tier"`
	Signals []Signal      `json:"signals"`
}

// Scorer combines buyer-profile and message-content signals into a bounded
// score. Pure and stateless; safe for unrestricted parallelism.
type Scorer struct {
	thresholds     Thresholds
	longDistanceKm float64
}

func NewScorer(t Thresholds, longDistanceKm float64) *Scorer {
	if t.High <= 0 || t.Medium <= 0 || t.High <= t.Medium {
		t = DefaultThresholds
	}
	if longDistanceKm <= 0 {
		longDistanceKm = DefaultLongDistanceKm
	}
	return &Scorer{thresholds: t, longDistanceKm: longDistanceKm}
}

// Score evaluates a message against a buyer profile. Malformed input never
// fails: unrecognized text simply yields a profile-only score.
func (s *Scorer) Score(message string, buyer core.BuyerProfile, in core.Intent) Assessment {
	var a Assessment
	add := func(tag string, points int) {
		a.Signals = append(a.Signals, Signal{Tag: tag, Points: points})
		a.Score += points
	}

	if !s.trusted(buyer) {
		if buyer.Rating == 0 && buyer.PurchaseCount == 0 {
			add("new_account", PointsNewAccount)
		}
		if !buyer.Verified {
			add("unverified", PointsUnverified)
		}
		if !buyer.HasPhoto {
			add("no_photo", PointsNoPhoto)
		}
		if buyer.DistanceKm > s.longDistanceKm {
			add("long_distance", PointsLongDistance)
		}
		if buyer.Rating > 0 && buyer.Rating < 5 {
			add("low_reputation", PointsLowReputation)
		}
	}

	msg := intent.Normalize(message)
	if intent.ContainsAny(msg, intent.ExternalContactTerms) {
		add("external_contact", PointsExternalContact)
	}
	if intent.ContainsAny(msg, intent.OffPlatformPaymentTerms) ||
		intent.ContainsAny(msg, intent.OffPlatformLureTerms) {
		add("offplatform_payment", PointsOffPlatformPay)
	}
	if intent.LinkPattern.MatchString(msg) {
		add("suspicious_link", PointsSuspiciousLink)
	}
	if intent.ContainsAny(msg, intent.UrgencyTerms) {
		add("urgency", PointsUrgency)
	}

	if a.Score > MaxScore {
		a.Score = MaxScore
	}
	a.Tier = s.Tier(a.Score)
	return a
}

// Tier maps a score to its risk tier.
func (s *Scorer) Tier(score int) core.RiskTier {
	switch {
	case score >= s.thresholds.High:
		return core.TierHigh
	case score >= s.thresholds.Medium:
		return core.TierMedium
	default:
		return core.TierLow
	}
}

// trusted reports whether the profile contributes zero risk by policy:
// verified with an established track record.
func (s *Scorer) trusted(buyer core.BuyerProfile) bool {
	return buyer.Verified && buyer.Rating >= trustedRating && buyer.PurchaseCount >= trustedPurchases
}

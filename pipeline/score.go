package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"nightdrive/models"
)

// Composite score weights. Fixed constants; the featured boost is additive,
// so a boosted listing can exceed what the weighted components alone produce.
const (
	weightPriceFairness = 0.22
	weightFreshness     = 0.18
	weightMileage       = 0.14
	weightPhotos        = 0.14
	weightDealer        = 0.10
	weightCompleteness  = 0.12
	weightHasPrice      = 0.10
	featuredBoost       = 0.15
)

const milesPerYear = 12000

// peerKey groups listings into (make, model, year) peer groups for price
// comparison. Case-insensitive.
func peerKey(l *models.Listing) string {
	year := ""
	if l.Build.Year != nil {
		year = fmt.Sprintf("%d", *l.Build.Year)
	}
	return strings.ToLower(l.Build.Make) + "|" + strings.ToLower(l.Build.Model) + "|" + year
}

// Score computes market-context metadata for every listing in the batch.
// It is a pure function of the whole batch: peer-group medians require the
// full set, so sub-batches must not be scored independently.
func Score(listings []models.Listing) []models.Listing {
	return scoreAt(listings, time.Now())
}

func scoreAt(listings []models.Listing, now time.Time) []models.Listing {
	groups := make(map[string][]float64)
	for i := range listings {
		l := &listings[i]
		if l.HasPrice() {
			key := peerKey(l)
			groups[key] = append(groups[key], *l.Price)
		}
	}
	for _, prices := range groups {
		sort.Float64s(prices)
	}

	nowUnix := now.Unix()
	currentYear := now.Year()

	out := make([]models.Listing, len(listings))
	for i := range listings {
		l := listings[i]

		var medianPrice *float64
		if prices := groups[peerKey(&l)]; len(prices) > 0 {
			medianPrice = models.Float64Ptr(prices[len(prices)/2])
		}

		priceFairness := 0.5
		switch {
		case l.HasPrice() && l.MSRP != nil && *l.MSRP > 0:
			ratio := *l.Price / *l.MSRP
			priceFairness = breakpoints(ratio,
				[]float64{0.82, 0.90, 0.98, 1.02, 1.10},
				[]float64{1.0, 0.85, 0.65, 0.5, 0.3, 0.15})
		case l.HasPrice() && medianPrice != nil:
			ratio := *l.Price / *medianPrice
			priceFairness = breakpoints(ratio,
				[]float64{0.85, 0.93, 1.02, 1.12},
				[]float64{1.0, 0.8, 0.5, 0.3, 0.15})
		}

		firstSeen := l.FirstSeenAt
		if firstSeen == 0 {
			firstSeen = nowUnix
		}
		daysSinceFirst := math.Max(0, float64(nowUnix-firstSeen)/86400)
		freshness := breakpoints(daysSinceFirst,
			[]float64{3, 7, 14, 30},
			[]float64{1.0, 0.85, 0.6, 0.35, 0.15})

		age := 0
		if l.Build.Year != nil && *l.Build.Year < currentYear {
			age = currentYear - *l.Build.Year
		}
		expectedMiles := float64(age * milesPerYear)
		if age <= 0 {
			expectedMiles = 500
		}
		actualMiles := 99999.0 // missing mileage is intentionally penalized
		if l.Miles != nil {
			actualMiles = *l.Miles
		}
		mileRatio := actualMiles / expectedMiles
		mileageValue := breakpoints(mileRatio,
			[]float64{0.25, 0.5, 0.8, 1.0},
			[]float64{1.0, 0.85, 0.6, 0.4, 0.2})

		photoCount := l.PhotoCount()
		var photoQuality float64
		switch {
		case photoCount >= 20:
			photoQuality = 1.0
		case photoCount >= 10:
			photoQuality = 0.85
		case photoCount >= 5:
			photoQuality = 0.65
		case photoCount >= 2:
			photoQuality = 0.4
		case photoCount >= 1:
			photoQuality = 0.25
		}

		dealerType := strings.ToLower(l.Dealer.DealerType)
		dealerQuality := 0.3
		switch dealerType {
		case "franchise":
			dealerQuality = 0.9
		case "independent":
			dealerQuality = 0.45
		}

		hasPrice := l.HasPrice()
		completeness := 0.0
		if hasPrice {
			completeness += 0.25
		}
		if photoCount > 0 {
			completeness += 0.25
		}
		if l.ExteriorColor != "" {
			completeness += 0.25
		}
		if l.Miles != nil {
			completeness += 0.25
		}

		score := weightPriceFairness*priceFairness +
			weightFreshness*freshness +
			weightMileage*mileageValue +
			weightPhotos*photoQuality +
			weightDealer*dealerQuality +
			weightCompleteness*completeness
		if hasPrice {
			score += weightHasPrice * 0.8
		}
		if l.Featured {
			score += featuredBoost
		}

		variant := ""
		switch {
		case priceFairness >= 0.75 && hasPrice:
			variant = "best-value"
		case mileageValue >= 0.8:
			variant = "low-mileage"
		case freshness >= 0.8:
			variant = "newly-listed"
		}

		dealBadge := ""
		if hasPrice {
			switch {
			case priceFairness >= 0.8:
				dealBadge = "great-deal"
			case priceFairness >= 0.5:
				dealBadge = "fair-price"
			case priceFairness <= 0.25:
				dealBadge = "above-market"
			}
		}

		trustSignals := []string{}
		if l.VIN != "" {
			trustSignals = append(trustSignals, "verified-vin")
		}
		if dealerType == "franchise" {
			trustSignals = append(trustSignals, "franchise-dealer")
		}
		if l.OneOwner {
			trustSignals = append(trustSignals, "one-owner")
		}
		if l.CleanTitle {
			trustSignals = append(trustSignals, "clean-title")
		}

		l.Meta = &models.Meta{
			Score:          round3(score),
			Variant:        variant,
			DealBadge:      dealBadge,
			PriceFairness:  round2(priceFairness),
			Freshness:      round2(freshness),
			MileageValue:   round2(mileageValue),
			PhotoQuality:   round2(photoQuality),
			DealerQuality:  round2(dealerQuality),
			DaysSinceFirst: int(math.Round(daysSinceFirst)),
			MedianPrice:    medianPrice,
			TrustSignals:   trustSignals,
			Featured:       l.Featured,
		}
		out[i] = l
	}
	return out
}

// breakpoints maps v through ascending thresholds: values[i] applies when
// v < thresholds[i], the last value when v clears them all.
func breakpoints(v float64, thresholds, values []float64) float64 {
	for i, t := range thresholds {
		if v < t {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

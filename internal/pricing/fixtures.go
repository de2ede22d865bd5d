package pricing

import "github.com/raine/pricemate/internal/estimate"

const (
	fixtureIDPrefix = "mock-estimate-"
	// DefaultFixtureID is used for categories without their own fixture.
	DefaultFixtureID = fixtureIDPrefix + "default"
)

var fixtures = map[string]estimate.Result{
	fixtureIDPrefix + estimate.CategoryPhones: {
		Prices:      estimate.Prices{Recommended: 2850, Fast: 2650, Max: 3000},
		Stats:       estimate.Stats{P25: 2600, Median: 2800, P75: 2950, SampleSize: 45, OutliersRemoved: 2},
		Adjustments: &estimate.Adjustments{Condition: -0.1, Age: -0.25, Seasonality: 0, Region: 0.05, Damage: 0},
	},
	fixtureIDPrefix + estimate.CategoryLaptops: {
		Prices:      estimate.Prices{Recommended: 3500, Fast: 3255, Max: 3745},
		Stats:       estimate.Stats{P25: 3300, Median: 3550, P75: 3800, SampleSize: 28, OutliersRemoved: 1},
		Adjustments: &estimate.Adjustments{Condition: 0, Age: -0.15, Seasonality: -0.05, Region: 0, Damage: -0.05},
	},
	fixtureIDPrefix + estimate.CategoryFurniture: {
		Prices:      estimate.Prices{Recommended: 450, Fast: 418, Max: 481},
		Stats:       estimate.Stats{P25: 400, Median: 450, P75: 500, SampleSize: 15, OutliersRemoved: 0},
		Adjustments: &estimate.Adjustments{Condition: -0.1, Age: -0.08, Seasonality: 0, Region: 0, Damage: 0},
	},
	fixtureIDPrefix + estimate.CategoryTablets: {
		Prices:      estimate.Prices{Recommended: 1450, Fast: 1348, Max: 1551},
		Stats:       estimate.Stats{P25: 1300, Median: 1450, P75: 1600, SampleSize: 33, OutliersRemoved: 2},
		Adjustments: &estimate.Adjustments{Condition: -0.05, Age: -0.20, Seasonality: 0, Region: 0.05, Damage: 0},
	},
	fixtureIDPrefix + estimate.CategoryGamingConsoles: {
		Prices:      estimate.Prices{Recommended: 1100, Fast: 1023, Max: 1177},
		Stats:       estimate.Stats{P25: 1000, Median: 1150, P75: 1250, SampleSize: 52, OutliersRemoved: 4},
		Adjustments: &estimate.Adjustments{Condition: 0, Age: -0.3, Seasonality: 0.1, Region: 0, Damage: -0.05},
	},
	fixtureIDPrefix + estimate.CategoryCameras: {
		Prices:      estimate.Prices{Recommended: 2150, Fast: 2000, Max: 2300},
		Stats:       estimate.Stats{P25: 2000, Median: 2100, P75: 2250, SampleSize: 21, OutliersRemoved: 1},
		Adjustments: &estimate.Adjustments{Condition: -0.15, Age: -0.1, Seasonality: 0, Region: -0.05, Damage: -0.1},
	},
	DefaultFixtureID: {
		Prices:      estimate.Prices{Recommended: 970, Fast: 902, Max: 1038},
		Stats:       estimate.Stats{P25: 920, Median: 965, P75: 990, SampleSize: 10, OutliersRemoved: 0},
		Adjustments: &estimate.Adjustments{Condition: 0, Age: -0.2, Seasonality: 0, Region: 0, Damage: -0.07},
	},
}

// FixtureID returns the fixture identifier used for category.
func FixtureID(category string) string {
	id := fixtureIDPrefix + category
	if _, ok := fixtures[id]; ok {
		return id
	}
	return DefaultFixtureID
}

// Fixture returns a copy of the fixture result stored under id.
func Fixture(id string) (estimate.Result, bool) {
	res, ok := fixtures[id]
	if !ok {
		return estimate.Result{}, false
	}
	if res.Adjustments != nil {
		adj := *res.Adjustments
		res.Adjustments = &adj
	}
	return res, true
}

// FixtureForCategory returns the fixture result for category.
func FixtureForCategory(category string) estimate.Result {
	res, _ := Fixture(FixtureID(category))
	return res
}

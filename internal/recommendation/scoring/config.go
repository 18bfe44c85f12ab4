// internal/recommendation/scoring/config.go
package scoring

// DistanceBucket awards Bonus to businesses strictly closer than WithinMiles.
type DistanceBucket struct {
	WithinMiles float64
	Bonus       int
}

type Config struct {
	// Buckets must be ordered by ascending WithinMiles; the first match wins.
	Buckets              []DistanceBucket
	TagMatchBonus        int
	CategoryMatchBonus   int
	MonetizationBonus    int
	IntensityBonus       int
	IntensityThreshold   int
	IntensityBusinessTag []string
}

func LoadConfig() *Config {
	return &Config{
		Buckets: []DistanceBucket{
			{WithinMiles: 1, Bonus: 50},
			{WithinMiles: 3, Bonus: 30},
			{WithinMiles: 5, Bonus: 20},
			{WithinMiles: 10, Bonus: 10},
		},
		TagMatchBonus:        15,
		CategoryMatchBonus:   20,
		MonetizationBonus:    25,
		IntensityBonus:       10,
		IntensityThreshold:   4,
		IntensityBusinessTag: []string{"adventure", "bold"},
	}
}

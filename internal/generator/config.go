package generator

// Config drives the synthetic data generator.
type Config struct {
	NumUsers                 int
	NumProperties            int
	NumOffers                int
	DuplicateEmailChance     float64
	DuplicatePhoneChance     float64
	DuplicateDigitalIDChance float64
	VerifiedChance           float64
	Password                 string
	Seed                     int64
}

// DefaultConfig returns settings that produce a small dataset with a visible
// share of impersonation candidates.
func DefaultConfig() Config {
	return Config{
		NumUsers:                 200,
		NumProperties:            120,
		NumOffers:                300,
		DuplicateEmailChance:     0.05,
		DuplicatePhoneChance:     0.08,
		DuplicateDigitalIDChance: 0.03,
		VerifiedChance:           0.6,
		Password:                 "demo1234",
		Seed:                     42,
	}
}

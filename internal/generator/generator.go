package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/identity"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/seed"
)

// Generator produces synthetic users, listings, offers and the matching ledger
// events. A fixed seed yields the same dataset.
type Generator struct {
	cfg   Config
	rand  *rand.Rand
	now   time.Time
	names nameFragments
	pools attributePools
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = defaults.NumUsers
	}
	if cfg.NumProperties < 0 {
		cfg.NumProperties = 0
	}
	if cfg.NumOffers < 0 {
		cfg.NumOffers = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:   cfg,
		rand:  rand.New(rand.NewSource(cfg.Seed)),
		now:   time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		names: defaultNameFragments(),
	}
}

// WithNow sets the reference instant all generated timestamps precede.
func (g *Generator) WithNow(now time.Time) *Generator {
	g.now = now.UTC().Truncate(time.Millisecond)
	return g
}

// Generate synthesises a dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (seed.Dataset, error) {
	var ds seed.Dataset

	users, err := g.users(ctx)
	if err != nil {
		return seed.Dataset{}, err
	}
	ds.Users = users

	var sellers, buyers []domain.User
	for _, rec := range users {
		switch rec.Role {
		case domain.RoleSeller:
			sellers = append(sellers, rec.User)
		case domain.RoleBuyer:
			buyers = append(buyers, rec.User)
		}
	}
	if len(sellers) == 0 {
		sellers = []domain.User{users[0].User}
	}
	if len(buyers) == 0 {
		buyers = []domain.User{users[len(users)-1].User}
	}

	for i := 0; i < g.cfg.NumProperties; i++ {
		if err := ctx.Err(); err != nil {
			return seed.Dataset{}, err
		}
		ds.Properties = append(ds.Properties, g.property(i, sellers[g.rand.Intn(len(sellers))]))
	}

	if len(ds.Properties) > 0 {
		for i := 0; i < g.cfg.NumOffers; i++ {
			if err := ctx.Err(); err != nil {
				return seed.Dataset{}, err
			}
			property := ds.Properties[g.rand.Intn(len(ds.Properties))]
			ds.Offers = append(ds.Offers, g.offer(i, property, buyers[g.rand.Intn(len(buyers))]))
		}
	}

	ds.Events = events(ds)
	return ds, nil
}

func (g *Generator) users(ctx context.Context) ([]seed.UserRecord, error) {
	users := make([]seed.UserRecord, 0, g.cfg.NumUsers)
	for i := 0; i < g.cfg.NumUsers; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := fmt.Sprintf("USR-%05d", i+1)
		role := g.randomRole()
		createdAt := g.now.Add(-time.Duration(g.rand.Intn(180*24)) * time.Hour)
		user := domain.User{
			ID:                 id,
			Name:               g.randomFullName(),
			Email:              g.maybeSharedString(&g.pools.emails, g.cfg.DuplicateEmailChance, func() string { return g.randomEmail(i) }),
			Phone:              g.maybeSharedString(&g.pools.phones, g.cfg.DuplicatePhoneChance, g.randomPhone),
			Role:               role,
			RegistrationSource: fmt.Sprintf("198.51.100.%d", 1+g.rand.Intn(250)),
			CreatedAt:          createdAt,
			UpdatedAt:          createdAt,
		}

		if g.rand.Float64() < g.cfg.VerifiedChance {
			did := g.digitalID(user)
			if donor := g.digitalIDDonor(users, role); donor != nil && g.rand.Float64() < g.cfg.DuplicateDigitalIDChance {
				did.ID = donor.ID
			}
			user.DigitalID = &did
			user.IsVerified = true
		}

		users = append(users, seed.UserRecord{User: user, Password: g.cfg.Password})
	}
	return users, nil
}

// digitalIDDonor picks a verified user of another role whose digital ID can
// be reused.
func (g *Generator) digitalIDDonor(users []seed.UserRecord, role domain.Role) *domain.DigitalID {
	if len(users) == 0 {
		return nil
	}
	start := g.rand.Intn(len(users))
	for i := range users {
		candidate := users[(start+i)%len(users)]
		if candidate.DigitalID != nil && candidate.Role != role {
			return candidate.DigitalID
		}
	}
	return nil
}

func (g *Generator) digitalID(user domain.User) domain.DigitalID {
	methods := []domain.VerificationMethod{domain.MethodNafath, domain.MethodAbsher, domain.MethodNationalID, domain.MethodPassport}
	method := methods[g.rand.Intn(len(methods))]
	fingerprint := identity.HashValue(user.ID + "|" + string(method) + "|" + user.Email)
	verifiedAt := user.CreatedAt.Add(time.Duration(1+g.rand.Intn(48)) * time.Hour)
	return domain.DigitalID{
		ID:         "did:wasatah:" + fingerprint[:24],
		Method:     method,
		RiskScore:  float64(g.rand.Intn(300)) / 1000,
		ProofTag:   "zkp_" + fingerprint[24:56],
		IsVerified: true,
		VerifiedAt: verifiedAt,
		ExpiresAt:  verifiedAt.Add(identity.DigitalIDValidity),
	}
}

func (g *Generator) property(i int, seller domain.User) domain.Property {
	city := cities[g.rand.Intn(len(cities))]
	kind := propertyTypes[g.rand.Intn(len(propertyTypes))]
	createdAt := seller.CreatedAt.Add(time.Duration(1+g.rand.Intn(30*24)) * time.Hour)
	if createdAt.After(g.now) {
		createdAt = g.now
	}
	bedrooms := 1 + g.rand.Intn(6)

	history := []domain.OwnershipHop{}
	if g.rand.Intn(2) == 0 {
		from := createdAt.AddDate(-3-g.rand.Intn(5), 0, 0)
		to := createdAt.AddDate(-1, 0, 0)
		history = append(history, domain.OwnershipHop{
			OwnerID:      fmt.Sprintf("DEV-%03d", 1+g.rand.Intn(20)),
			OwnerName:    city.name + " Development Co.",
			FromDate:     from,
			ToDate:       &to,
			TransferType: domain.TransferInitial,
			Verified:     true,
		})
		history = append(history, domain.OwnershipHop{
			OwnerID:      seller.ID,
			OwnerName:    seller.Name,
			FromDate:     to,
			TransferType: domain.TransferSale,
			Verified:     true,
		})
	} else {
		history = append(history, domain.OwnershipHop{
			OwnerID:      seller.ID,
			OwnerName:    seller.Name,
			FromDate:     createdAt,
			TransferType: domain.TransferInitial,
			Verified:     true,
		})
	}

	return domain.Property{
		ID:               fmt.Sprintf("PRP-%05d", i+1),
		Title:            fmt.Sprintf("%d bedroom %s in %s", bedrooms, kind, city.districts[0]),
		Price:            float64(300+g.rand.Intn(4700)) * 1000,
		Currency:         "SAR",
		PropertyType:     kind,
		Status:           domain.PropertyAvailable,
		City:             city.name,
		District:         city.districts[g.rand.Intn(len(city.districts))],
		Bedrooms:         bedrooms,
		Bathrooms:        1 + g.rand.Intn(bedrooms+1),
		AreaSqm:          float64(80 + g.rand.Intn(600)),
		SellerID:         seller.ID,
		OwnershipHistory: history,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func (g *Generator) offer(i int, property domain.Property, buyer domain.User) domain.Offer {
	createdAt := property.CreatedAt.Add(time.Duration(1+g.rand.Intn(14*24)) * time.Hour)
	if createdAt.After(g.now) {
		createdAt = g.now
	}
	expires := createdAt.AddDate(0, 0, 14)
	statuses := []domain.OfferStatus{
		domain.OfferPending, domain.OfferPending, domain.OfferPending,
		domain.OfferAccepted, domain.OfferRejected, domain.OfferWithdrawn,
	}
	return domain.Offer{
		ID:         fmt.Sprintf("OFR-%05d", i+1),
		PropertyID: property.ID,
		BuyerID:    buyer.ID,
		BuyerName:  buyer.Name,
		Amount:     math.Round(property.Price*(0.85+g.rand.Float64()*0.2)/1000) * 1000,
		Currency:   property.Currency,
		Status:     statuses[g.rand.Intn(len(statuses))],
		ExpiresAt:  &expires,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

// events derives the ledger history of ds: one registration per user, one
// listing per property and one offer per offer.
func events(ds seed.Dataset) []ledger.AppendInput {
	type timed struct {
		at time.Time
		in ledger.AppendInput
	}
	var all []timed
	names := make(map[string]string, len(ds.Users))
	for _, u := range ds.Users {
		names[u.ID] = u.Name
		all = append(all, timed{at: u.CreatedAt, in: ledger.AppendInput{
			Type: domain.EventUserRegistered, ActorID: u.ID, ActorName: u.Name,
			Details: map[string]any{"role": string(u.Role), "email": u.Email},
		}})
	}
	for _, p := range ds.Properties {
		all = append(all, timed{at: p.CreatedAt, in: ledger.AppendInput{
			Type: domain.EventPropertyListed, ActorID: p.SellerID, ActorName: names[p.SellerID],
			Details: map[string]any{"propertyId": p.ID, "title": p.Title, "price": p.Price, "currency": p.Currency, "city": p.City},
		}})
	}
	for _, o := range ds.Offers {
		all = append(all, timed{at: o.CreatedAt, in: ledger.AppendInput{
			Type: domain.EventOfferMade, ActorID: o.BuyerID, ActorName: o.BuyerName,
			Details: map[string]any{"offerId": o.ID, "propertyId": o.PropertyID, "amount": o.Amount, "currency": o.Currency},
		}})
	}

	slices.SortStableFunc(all, func(a, b timed) int { return a.at.Compare(b.at) })
	out := make([]ledger.AppendInput, 0, len(all))
	for _, t := range all {
		out = append(out, t.in)
	}
	return out
}

// Package seeder loads the demo marketplace catalogue into the in-memory backends.
// Every property goes through the real registration and verification services, so
// the seeded record hashes are the ones a client would compute.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"deedgate/internal/records/models"
	"deedgate/internal/registration"
	"deedgate/internal/verification"
	"deedgate/pkg/domain"
)

// DemoWallet owns every seeded listing. Mint a token for it to try /me/listings.
const DemoWallet = "0x8ba1f109551bd432803012645ac136ddd64dba72"

const seedActor = "seeder@deedgate.local"

// Registrar is satisfied by *registration.Service.
type Registrar interface {
	Register(ctx context.Context, capability registration.Capability, cmd registration.RegisterCommand) (*registration.RegisterResult, error)
}

// Verifier is satisfied by *verification.Service.
type Verifier interface {
	Verify(ctx context.Context, sub verification.Submission) (*verification.Result, error)
}

// SaleMarker flags a contract listing as sold. Satisfied by *ledger.Memory.
type SaleMarker interface {
	MarkSold(id domain.ContractID) error
}

// Property is one demo catalogue entry.
type Property struct {
	Title    string
	City     string
	PriceUSD int
	Beds     int
	Baths    int
	Area     int
	Owner    string
	Type     models.PropertyType
	Year     int
	// Image defaults to the shared demo photo.
	Image string
	// Listed properties are verified into the catalogue; the rest stay registered only.
	Listed bool
	// Unpublished properties get no on-chain listing slot.
	Unpublished bool
	Sold        bool
}

// Seeder populates in-memory stores with demo data
type Seeder struct {
	registrar Registrar
	verifier  Verifier
	sales     SaleMarker
	wallet    domain.WalletAddress
	logger    *slog.Logger
}

// New creates a new seeder. sales may be nil, in which case no listing is marked sold.
func New(registrar Registrar, verifier Verifier, sales SaleMarker, logger *slog.Logger) (*Seeder, error) {
	wallet, err := domain.ParseWalletAddress(DemoWallet)
	if err != nil {
		return nil, fmt.Errorf("parse demo wallet: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		registrar: registrar,
		verifier:  verifier,
		sales:     sales,
		wallet:    wallet,
		logger:    logger,
	}, nil
}

// Summary counts what SeedAll created.
type Summary struct {
	Registered int
	Listed     int
	Sold       int
}

// SeedAll registers every demo property and lists the ones marked Listed.
func (s *Seeder) SeedAll(ctx context.Context) (Summary, error) {
	return s.Seed(ctx, DemoCatalogue())
}

func (s *Seeder) Seed(ctx context.Context, properties []Property) (Summary, error) {
	s.logger.InfoContext(ctx, "seeding demo data...")

	var sum Summary
	for i, p := range properties {
		doc := DemoDeed(i, p)
		decl := p.declaration(i)

		reg, err := s.registrar.Register(ctx,
			registration.Capability{Admin: true, Actor: seedActor},
			registration.RegisterCommand{
				Document:    doc,
				ContentType: "application/pdf",
				Declaration: decl,
				Wallet:      s.wallet,
				Contact:     seedActor,
				SkipPublish: p.Unpublished,
			},
		)
		if err != nil {
			return sum, fmt.Errorf("register %q: %w", p.Title, err)
		}
		sum.Registered++

		if !p.Listed || p.Unpublished {
			continue
		}
		image := p.Image
		if image == "" {
			image = demoImage
		}
		if _, err := s.verifier.Verify(ctx, verification.Submission{
			Document:    doc,
			Declaration: decl,
			Price:       strconv.Itoa(p.PriceUSD),
			Image:       image,
			Wallet:      s.wallet,
			Actor:       seedActor,
		}); err != nil {
			return sum, fmt.Errorf("list %q: %w", p.Title, err)
		}
		sum.Listed++

		if p.Sold && s.sales != nil {
			if err := s.sales.MarkSold(reg.ContractID); err != nil {
				return sum, fmt.Errorf("mark %q sold: %w", p.Title, err)
			}
			sum.Sold++
		}
	}

	s.logger.InfoContext(ctx, "demo data seeded successfully",
		"registered", sum.Registered,
		"listed", sum.Listed,
		"sold", sum.Sold,
	)
	return sum, nil
}

// declaration splits the display owner into first and last name so that the
// derived owner name matches the catalogue exactly.
func (p Property) declaration(i int) models.Declaration {
	first, last, _ := strings.Cut(p.Owner, " ")
	return models.Declaration{
		OwnerFirst:    first,
		OwnerLast:     last,
		OwnerID:       fmt.Sprintf("RC-%06d", 100001+i),
		PropertyTitle: p.Title,
		PropertyType:  p.Type,
		Location:      p.City,
		Size:          strconv.Itoa(p.Area),
		Beds:          strconv.Itoa(p.Beds),
		Baths:         strconv.Itoa(p.Baths),
		Year:          strconv.Itoa(p.Year),
	}
}

// DemoDeed renders a tiny, deterministic PDF standing in for the scanned deed.
func DemoDeed(i int, p Property) []byte {
	return []byte(fmt.Sprintf("%%PDF-1.4\n%% deedgate demo deed %04d\n1 0 obj << /Title (%s) /Author (%s) >> endobj\n%%%%EOF\n",
		i+1, p.Title, p.Owner))
}

const demoImage = "https://images.unsplash.com/photo-1505691938895-1758d7feb511?auto=format&fit=crop&w=900&q=80"

// DemoCatalogue is the sample marketplace shown on a fresh dev server.
func DemoCatalogue() []Property {
	return []Property{
		{Title: "Waterfront Loft", City: "Lagos, Nigeria", PriceUSD: 240000, Beds: 3, Baths: 2, Area: 2100, Owner: "Eko Estates", Type: models.PropertyTypeApartment, Year: 2015, Listed: true},
		{Title: "Beachfront Plot", City: "Mombasa, Kenya", PriceUSD: 180000, Area: 10000, Owner: "Coastal Developments", Type: models.PropertyTypeLand, Year: 2019, Listed: true, Sold: true},
		{Title: "CBD Condo", City: "Nairobi, Kenya", PriceUSD: 150000, Beds: 2, Baths: 2, Area: 1200, Owner: "Urban Estates", Type: models.PropertyTypeApartment, Year: 2018, Listed: true},
		{Title: "Garden Duplex", City: "Accra, Ghana", PriceUSD: 210000, Beds: 4, Baths: 3, Area: 2600, Owner: "Atlantic Homes", Type: models.PropertyTypeResidentialHouse, Year: 2012, Listed: true},
		{Title: "Skyline Apartment", City: "Cape Town, South Africa", PriceUSD: 320000, Beds: 3, Baths: 2, Area: 2000, Owner: "Table Bay Realty", Type: models.PropertyTypeApartment, Year: 2020, Listed: true},
		{Title: "Harbor Townhouse", City: "Dar es Salaam, Tanzania", PriceUSD: 190000, Beds: 3, Baths: 2, Area: 1800, Owner: "Coral Homes", Type: models.PropertyTypeResidentialHouse, Year: 2010, Listed: true},
		{Title: "Lakeview Villa", City: "Kigali, Rwanda", PriceUSD: 260000, Beds: 4, Baths: 3, Area: 2400, Owner: "Hillside Properties", Type: models.PropertyTypeResidentialHouse, Year: 2016},
		{Title: "Marina Penthouse", City: "Abuja, Nigeria", PriceUSD: 350000, Beds: 4, Baths: 3, Area: 2800, Owner: "Central Heights", Type: models.PropertyTypeApartment, Year: 2021, Unpublished: true},
	}
}

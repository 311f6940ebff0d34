package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/service/citation"
)

// BrandRepo implements citation.BrandSource against the brand_listings
// table the import pipeline populates.
type BrandRepo struct{ db *sql.DB }

// NewBrandRepo creates a Postgres-backed brand data source.
func NewBrandRepo(db *sql.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) GetBrandRecord(ctx context.Context, domainID string) (*domain.BrandRecord, error) {
	rec := &domain.BrandRecord{}
	err := r.db.QueryRowContext(ctx, `
		SELECT domain_id, COALESCE(business_name,''), COALESCE(street,''), COALESCE(city,''),
		       COALESCE(state,''), COALESCE(zip,''), COALESCE(country,''),
		       COALESCE(phone,''), COALESCE(email,''), COALESCE(website,''),
		       COALESCE(description,''), COALESCE(categories,''),
		       COALESCE(hours::text,''), COALESCE(social_links::text,''),
		       COALESCE(logo_url,''), COALESCE(image_urls,'')
		FROM brand_listings
		WHERE domain_id = $1
	`, domainID).Scan(
		&rec.DomainID, &rec.BusinessName, &rec.Street, &rec.City,
		&rec.State, &rec.Zip, &rec.Country,
		&rec.Phone, &rec.Email, &rec.Website,
		&rec.Description, &rec.CategoriesCSV,
		&rec.HoursJSON, &rec.SocialJSON,
		&rec.LogoURL, &rec.ImagesCSV,
	)
	if err == sql.ErrNoRows {
		return nil, citation.ErrBrandNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get brand record: %w", err)
	}
	return rec, nil
}

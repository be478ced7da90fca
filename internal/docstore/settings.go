package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MarcusAlienx/casanala/internal/database"
)

type dayHoursDoc struct {
	IsOpen bool   `firestore:"isOpen"`
	Open   string `firestore:"open"`
	Close  string `firestore:"close"`
}

type promotionDoc struct {
	ID          string `firestore:"id"`
	Description string `firestore:"description"`
	StartDate   string `firestore:"startDate,omitempty"`
	EndDate     string `firestore:"endDate,omitempty"`
	IsActive    bool   `firestore:"isActive"`
}

type siteSettingsDoc struct {
	WeeklyHours map[string]dayHoursDoc `firestore:"weeklyHours"`
	Promotions  []promotionDoc         `firestore:"promotions"`
	UpdatedAt   time.Time              `firestore:"updatedAt"`
}

func (s *Store) settingsRef() *firestore.DocumentRef {
	return s.client.Collection(configCollection).Doc(database.SiteSettingsID)
}

func hoursToDoc(in map[string]database.DayHours) map[string]dayHoursDoc {
	out := make(map[string]dayHoursDoc, len(in))
	for day, h := range in {
		out[day] = dayHoursDoc{IsOpen: h.IsOpen, Open: h.Open, Close: h.Close}
	}
	return out
}

func promotionsToDoc(in []database.Promotion) []promotionDoc {
	out := make([]promotionDoc, len(in))
	for i, p := range in {
		out[i] = promotionDoc(p)
	}
	return out
}

func (d siteSettingsDoc) model() *database.SiteSettings {
	s := &database.SiteSettings{
		WeeklyHours: make(map[string]database.DayHours, len(d.WeeklyHours)),
		Promotions:  make([]database.Promotion, len(d.Promotions)),
		UpdatedAt:   d.UpdatedAt,
	}
	for day, h := range d.WeeklyHours {
		s.WeeklyHours[day] = database.DayHours{IsOpen: h.IsOpen, Open: h.Open, Close: h.Close}
	}
	for i, p := range d.Promotions {
		s.Promotions[i] = database.Promotion(p)
	}
	return s
}

// GetSiteSettings returns nil, nil when the document does not exist.
func (s *Store) GetSiteSettings(ctx context.Context) (*database.SiteSettings, error) {
	snap, err := s.settingsRef().Get(ctx)
	if err != nil {
		if err = translate(err); errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var d siteSettingsDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode site settings: %w", err)
	}
	return d.model(), nil
}

// UpsertSiteSettings merges into the document; nil fields keep their stored value.
func (s *Store) UpsertSiteSettings(ctx context.Context, arg database.UpsertSiteSettingsParams) (*database.SiteSettings, error) {
	data := map[string]interface{}{"updatedAt": firestore.ServerTimestamp}
	if arg.WeeklyHours != nil {
		data["weeklyHours"] = hoursToDoc(arg.WeeklyHours)
	}
	if arg.Promotions != nil {
		data["promotions"] = promotionsToDoc(arg.Promotions)
	}
	if _, err := s.settingsRef().Set(ctx, data, firestore.MergeAll); err != nil {
		return nil, translate(err)
	}
	return s.GetSiteSettings(ctx)
}

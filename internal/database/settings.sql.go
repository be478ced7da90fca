package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// SiteSettingsID is the single settings row.
const SiteSettingsID = "siteSettings"

const getSiteSettings = `-- name: GetSiteSettings :one
SELECT weekly_hours, promotions, updated_at FROM site_settings WHERE id = $1`

// GetSiteSettings returns nil, nil when settings were never saved.
func (q *Queries) GetSiteSettings(ctx context.Context) (*SiteSettings, error) {
	var (
		s          SiteSettings
		hours      []byte
		promotions []byte
	)
	err := q.db.QueryRow(ctx, getSiteSettings, SiteSettingsID).Scan(&hours, &promotions, &s.UpdatedAt)
	if err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(hours, &s.WeeklyHours); err != nil {
		return nil, fmt.Errorf("decode weekly hours: %w", err)
	}
	if err := json.Unmarshal(promotions, &s.Promotions); err != nil {
		return nil, fmt.Errorf("decode promotions: %w", err)
	}
	return &s, nil
}

// UpsertSiteSettings merges into the stored row: a nil WeeklyHours or
// Promotions keeps the stored value.
const upsertSiteSettings = `-- name: UpsertSiteSettings :one
INSERT INTO site_settings (id, weekly_hours, promotions)
VALUES ($1, COALESCE($2::jsonb, '{}'::jsonb), COALESCE($3::jsonb, '[]'::jsonb))
ON CONFLICT (id) DO UPDATE SET
	weekly_hours = COALESCE($2::jsonb, site_settings.weekly_hours),
	promotions = COALESCE($3::jsonb, site_settings.promotions),
	updated_at = now()
RETURNING updated_at`

type UpsertSiteSettingsParams struct {
	WeeklyHours map[string]DayHours
	Promotions  []Promotion
}

func (q *Queries) UpsertSiteSettings(ctx context.Context, arg UpsertSiteSettingsParams) (*SiteSettings, error) {
	var hours, promotions []byte
	if arg.WeeklyHours != nil {
		b, err := json.Marshal(arg.WeeklyHours)
		if err != nil {
			return nil, fmt.Errorf("encode weekly hours: %w", err)
		}
		hours = b
	}
	if arg.Promotions != nil {
		b, err := json.Marshal(arg.Promotions)
		if err != nil {
			return nil, fmt.Errorf("encode promotions: %w", err)
		}
		promotions = b
	}
	var hoursArg, promotionsArg interface{}
	if hours != nil {
		hoursArg = string(hours)
	}
	if promotions != nil {
		promotionsArg = string(promotions)
	}
	var s SiteSettings
	if err := q.db.QueryRow(ctx, upsertSiteSettings, SiteSettingsID, hoursArg, promotionsArg).Scan(&s.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return q.GetSiteSettings(ctx)
}

package store

import (
	"context"

	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// SettingsPatch is a partial settings update. Each nil subgroup is left
// untouched; within a present subgroup, each nil field is left untouched.
// The merge schema is fixed: every settings field is accounted for here, by
// name, rather than discovered by dynamic key iteration.
type SettingsPatch struct {
	Profile       *ProfilePatch
	Notifications *NotificationsPatch
	Privacy       *PrivacyPatch
	Appearance    *AppearancePatch
}

// ProfilePatch updates the profile subgroup field by field.
type ProfilePatch struct {
	Name     *string
	Avatar   *string
	Currency *string
}

// NotificationsPatch updates the notification flags field by field.
type NotificationsPatch struct {
	BudgetAlerts      *bool
	GoalReminders     *bool
	TransactionAlerts *bool
	WeeklyReports     *bool
}

// PrivacyPatch updates the privacy flags field by field.
type PrivacyPatch struct {
	DataSharing       *bool
	AnalyticsTracking *bool
	MarketingEmails   *bool
}

// AppearancePatch updates the appearance subgroup field by field.
type AppearancePatch struct {
	ColorScheme *string
	FontSize    *string
	Layout      *string
}

func mergeSettings(base models.UserSettings, patch SettingsPatch) models.UserSettings {
	if p := patch.Profile; p != nil {
		if p.Name != nil {
			base.Profile.Name = *p.Name
		}
		if p.Avatar != nil {
			base.Profile.Avatar = *p.Avatar
		}
		if p.Currency != nil {
			base.Profile.Currency = *p.Currency
		}
	}
	if p := patch.Notifications; p != nil {
		if p.BudgetAlerts != nil {
			base.Notifications.BudgetAlerts = *p.BudgetAlerts
		}
		if p.GoalReminders != nil {
			base.Notifications.GoalReminders = *p.GoalReminders
		}
		if p.TransactionAlerts != nil {
			base.Notifications.TransactionAlerts = *p.TransactionAlerts
		}
		if p.WeeklyReports != nil {
			base.Notifications.WeeklyReports = *p.WeeklyReports
		}
	}
	if p := patch.Privacy; p != nil {
		if p.DataSharing != nil {
			base.Privacy.DataSharing = *p.DataSharing
		}
		if p.AnalyticsTracking != nil {
			base.Privacy.AnalyticsTracking = *p.AnalyticsTracking
		}
		if p.MarketingEmails != nil {
			base.Privacy.MarketingEmails = *p.MarketingEmails
		}
	}
	if p := patch.Appearance; p != nil {
		if p.ColorScheme != nil {
			base.Appearance.ColorScheme = *p.ColorScheme
		}
		if p.FontSize != nil {
			base.Appearance.FontSize = *p.FontSize
		}
		if p.Layout != nil {
			base.Appearance.Layout = *p.Layout
		}
	}
	return base
}

// Settings returns the cached settings, loading defaults lazily for callers
// that have not called LoadSettings yet.
func (s *Store) Settings() models.UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return *models.DefaultSettings(s.session.UserID)
	}
	return *s.settings
}

// LoadSettings fetches the session's settings, creating and persisting
// defaults on first load.
func (s *Store) LoadSettings(ctx context.Context) (models.UserSettings, error) {
	var settings *models.UserSettings

	if s.remote() {
		var err error
		settings, err = s.repos.Settings.Get(ctx, s.session.UserID)
		if err != nil {
			return models.UserSettings{}, s.fail(err)
		}
		if settings == nil {
			settings = models.DefaultSettings(s.session.UserID)
			if err := s.repos.Settings.Upsert(ctx, settings); err != nil {
				return models.UserSettings{}, s.fail(err)
			}
		}
	} else {
		var stored models.UserSettings
		found, err := s.local.Get(s.localKey(localstore.EntitySettings), &stored)
		if err != nil {
			return models.UserSettings{}, s.fail(err)
		}
		if found {
			settings = &stored
		} else {
			settings = models.DefaultSettings(s.session.UserID)
			if err := s.local.Put(s.localKey(localstore.EntitySettings), settings); err != nil {
				return models.UserSettings{}, s.fail(err)
			}
		}
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.clearErr()

	return *settings, nil
}

// UpdateSettings deep-merges a partial update into the stored settings:
// each subgroup merges at the field level, so omitting a subgroup (or a
// field) never erases existing values.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (models.UserSettings, error) {
	previous := s.Settings()
	merged := mergeSettings(previous, patch)
	merged.UserID = s.session.UserID

	if s.remote() {
		if err := s.repos.Settings.Upsert(ctx, &merged); err != nil {
			return models.UserSettings{}, s.fail(err)
		}
	} else {
		if err := s.local.Put(s.localKey(localstore.EntitySettings), &merged); err != nil {
			return models.UserSettings{}, s.fail(err)
		}
	}

	s.mu.Lock()
	stored := merged
	s.settings = &stored
	s.mu.Unlock()
	s.clearErr()

	s.record(ctx, models.OpUpdate, models.EntitySettings, s.session.UserID, previous, merged,
		"Updated settings")
	return merged, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SiteSettingsInput struct {
	MaintenanceMode bool                `json:"maintenanceMode"`
	Announcement    models.Announcement `json:"announcement"`
	Ticker          []models.TickerItem `json:"ticker" validate:"max=20,dive"`
	HostedBy        []string            `json:"hostedBy" validate:"max=5,dive,required,max=64"`
}

type TickerInput struct {
	Items []models.TickerItem `json:"items" validate:"max=20,dive"`
}

// SettingsService reads and writes the site settings singleton.
// Reads never fail: on any store problem they return the defaults.
type SettingsService interface {
	Get(ctx context.Context) models.SiteSettings
	MaintenanceMode(ctx context.Context) bool
	Announcement(ctx context.Context) models.Announcement
	Ticker(ctx context.Context) []models.TickerItem
	HostedBy(ctx context.Context) (hosts []string, displayName string)

	Replace(ctx context.Context, actorID uuid.UUID, input SiteSettingsInput) (models.SiteSettings, error)
	SetMaintenance(ctx context.Context, actorID uuid.UUID, enabled bool) error
	SetAnnouncement(ctx context.Context, actorID uuid.UUID, announcement models.Announcement) error
	SetTicker(ctx context.Context, actorID uuid.UUID, input TickerInput) error
}

type settingsService struct {
	repo     repositories.SettingsRepository
	audit    AuditService
	notifier Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewSettingsService(
	repo repositories.SettingsRepository,
	audit AuditService,
	notifier Notifier,
	log *zap.Logger,
) SettingsService {
	return &settingsService{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		now:      time.Now,
		log:      log,
	}
}

func (s *settingsService) Get(ctx context.Context) models.SiteSettings {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, repositories.ErrSettingsNotFound) {
			s.log.Warn("site settings unavailable, serving defaults", zap.Error(err))
		}
		return models.DefaultSiteSettings()
	}
	if settings.Ticker == nil {
		settings.Ticker = []models.TickerItem{}
	}
	if settings.HostedBy == nil {
		settings.HostedBy = []string{}
	}
	return *settings
}

func (s *settingsService) MaintenanceMode(ctx context.Context) bool {
	return s.Get(ctx).MaintenanceMode
}

func (s *settingsService) Announcement(ctx context.Context) models.Announcement {
	return s.Get(ctx).Announcement
}

func (s *settingsService) Ticker(ctx context.Context) []models.TickerItem {
	return s.Get(ctx).Ticker
}

func (s *settingsService) HostedBy(ctx context.Context) ([]string, string) {
	settings := s.Get(ctx)
	return settings.HostedBy, settings.HostedByName()
}

func (s *settingsService) Replace(ctx context.Context, actorID uuid.UUID, input SiteSettingsInput) (models.SiteSettings, error) {
	input.HostedBy = trimAll(input.HostedBy)
	input.Announcement.Message = strings.TrimSpace(input.Announcement.Message)
	input.Ticker = trimTicker(input.Ticker)
	if err := validateStruct(input); err != nil {
		return models.SiteSettings{}, err
	}
	if err := validateAnnouncement(input.Announcement); err != nil {
		return models.SiteSettings{}, err
	}

	settings := models.SiteSettings{
		ID:              models.SiteSettingsID,
		MaintenanceMode: input.MaintenanceMode,
		Announcement:    input.Announcement,
		Ticker:          input.Ticker,
		HostedBy:        input.HostedBy,
		UpdatedAt:       s.now().UTC(),
		UpdatedBy:       actorID.String(),
	}
	if settings.Ticker == nil {
		settings.Ticker = []models.TickerItem{}
	}

	if err := s.repo.Replace(ctx, settings); err != nil {
		return models.SiteSettings{}, fmt.Errorf("failed to save site settings: %w", err)
	}

	s.audit.Record(ctx, actorID, models.AuditSettingChange, "settings", models.SiteSettingsID, map[string]any{
		"setting":         "all",
		"maintenanceMode": settings.MaintenanceMode,
		"announcement":    settings.Announcement.Message,
		"tickerItems":     len(settings.Ticker),
		"hostedBy":        settings.HostedBy,
	})
	s.notifier.Notify(ctx, models.Event{Type: models.EventSettingsUpdated, Room: models.SiteRoom, Payload: settings})
	return settings, nil
}

func (s *settingsService) SetMaintenance(ctx context.Context, actorID uuid.UUID, enabled bool) error {
	if err := s.repo.SetMaintenance(ctx, enabled, actorID.String(), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save maintenance mode: %w", err)
	}

	s.audit.Record(ctx, actorID, models.AuditSettingChange, "settings", models.SiteSettingsID, map[string]any{
		"setting": "maintenanceMode",
		"value":   enabled,
	})
	s.notifier.Notify(ctx, models.Event{
		Type:    models.EventMaintenanceToggled,
		Room:    models.SiteRoom,
		Payload: map[string]bool{"maintenanceMode": enabled},
	})
	return nil
}

func (s *settingsService) SetAnnouncement(ctx context.Context, actorID uuid.UUID, a models.Announcement) error {
	a.Message = strings.TrimSpace(a.Message)
	if err := validateStruct(a); err != nil {
		return err
	}
	if err := validateAnnouncement(a); err != nil {
		return err
	}

	if err := s.repo.SetAnnouncement(ctx, a, actorID.String(), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save announcement: %w", err)
	}

	s.audit.Record(ctx, actorID, models.AuditSettingChange, "settings", models.SiteSettingsID, map[string]any{
		"setting": "announcement",
		"message": a.Message,
		"active":  a.Active,
	})
	s.notifier.Notify(ctx, models.Event{Type: models.EventAnnouncementChanged, Room: models.SiteRoom, Payload: a})
	return nil
}

func (s *settingsService) SetTicker(ctx context.Context, actorID uuid.UUID, input TickerInput) error {
	input.Items = trimTicker(input.Items)
	if err := validateStruct(input); err != nil {
		return err
	}
	items := input.Items
	if items == nil {
		items = []models.TickerItem{}
	}

	if err := s.repo.SetTicker(ctx, items, actorID.String(), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save ticker: %w", err)
	}

	s.audit.Record(ctx, actorID, models.AuditSettingChange, "settings", models.SiteSettingsID, map[string]any{
		"setting": "ticker",
		"items":   len(items),
	})
	s.notifier.Notify(ctx, models.Event{
		Type:    models.EventTickerChanged,
		Room:    models.SiteRoom,
		Payload: map[string]any{"items": items},
	})
	return nil
}

// An active announcement needs a message to show.
func validateAnnouncement(a models.Announcement) error {
	if a.Active && strings.TrimSpace(a.Message) == "" {
		return ValidationErrors{{Field: "message", Tag: "required"}}
	}
	return nil
}

func trimTicker(in []models.TickerItem) []models.TickerItem {
	if in == nil {
		return nil
	}
	out := make([]models.TickerItem, len(in))
	for i, item := range in {
		out[i] = models.TickerItem{Text: strings.TrimSpace(item.Text), Link: strings.TrimSpace(item.Link)}
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

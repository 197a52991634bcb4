package services

import (
	"strings"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/storage"
)

const (
	maxTeamNameLength = 32
	maxBannerSize     = 5 << 20
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// populateBannerURL fills BannerURL from the stored object key.
func populateBannerURL(t *models.Tournament, uploader storage.FileUploader) {
	if t == nil || t.BannerKey == nil || *t.BannerKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*t.BannerKey); url != "" {
		t.BannerURL = &url
	}
}

// bannerExtension returns the file extension for an accepted banner type.
func bannerExtension(contentType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
	}
}

// normalizeTeamName trims surrounding whitespace and collapses inner runs.
func normalizeTeamName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func validateTeamName(name string) error {
	if name == "" {
		return ErrTeamNameRequired
	}
	if len([]rune(name)) > maxTeamNameLength {
		return ErrTeamNameTooLong
	}
	return nil
}

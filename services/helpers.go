package services

import (
	"github.com/changycj/tourneytrack/models"
	"github.com/changycj/tourneytrack/storage"
)

func dereferenceMatches(matches []*models.Match) []models.Match {
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, *m)
	}
	return out
}

func dereferenceTeams(teams []*models.Team) []models.Team {
	out := make([]models.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, *t)
	}
	return out
}

func dereferenceBrackets(list []*models.Bracket) []models.Bracket {
	out := make([]models.Bracket, 0, len(list))
	for _, b := range list {
		out = append(out, *b)
	}
	return out
}

// fillLogoURL resolves the stored logo key into a public URL for responses.
func fillLogoURL(uploader storage.FileUploader, team *models.Team) {
	if uploader == nil || team == nil || team.LogoKey == nil {
		return
	}
	url := uploader.PublicURL(*team.LogoKey)
	if url != "" {
		team.LogoURL = &url
	}
}

// extensionForContentType maps the upload content types we accept to a file
// extension for the stored object key.
func extensionForContentType(contentType string) (string, bool) {
	switch contentType {
	case "image/png":
		return ".png", true
	case "image/jpeg":
		return ".jpg", true
	case "image/gif":
		return ".gif", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
	}
}

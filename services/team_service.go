package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matchpoint-app/matchpoint/models"
	"github.com/matchpoint-app/matchpoint/repositories"
	"github.com/matchpoint-app/matchpoint/storage"
)

type TeamService interface {
	GetTeamWithPlayers(ctx context.Context, id string) (*models.Team, error)
	UploadLogo(ctx context.Context, teamID, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, uploader: uploader}
}

func (s *teamService) GetTeamWithPlayers(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teamRepo.GetWithPlayers(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to fetch team %s: %w", id, err)
	}
	s.populateLogoURL(team)
	return team, nil
}

// UploadLogo stores the team logo and records its object key. A previous
// logo object is replaced in place because the key is derived from the team
// id.
func (s *teamService) UploadLogo(ctx context.Context, teamID, contentType string, reader io.Reader) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to fetch team %s: %w", teamID, err)
	}

	key := fmt.Sprintf("teams/%s/logo", teamID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogoUploadFailed, err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to record logo key for team %s: %w", teamID, err)
	}
	team.LogoKey = &result.Key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team.LogoKey != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		team.LogoURL = &url
	}
}

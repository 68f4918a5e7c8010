package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
)

const (
	archiveContentType = "application/json"
	archivePrefix      = "games/"
)

// GameArchive is the document written for every finished game.
type GameArchive struct {
	Game   *models.Game       `json:"game"`
	Record *models.GameRecord `json:"record"`
}

// GameArchiver stores finished games outside the database.
type GameArchiver interface {
	Archive(ctx context.Context, game *models.Game, record *models.GameRecord) (*UploadResult, error)
	Remove(ctx context.Context, gameID string) error
}

type objectArchiver struct {
	uploader FileUploader
}

// NewObjectArchiver writes archives as games/<id>.json through uploader.
func NewObjectArchiver(uploader FileUploader) GameArchiver {
	return &objectArchiver{uploader: uploader}
}

// ArchiveKey is the object key of a game's archive.
func ArchiveKey(gameID string) string {
	return archivePrefix + gameID + ".json"
}

func (a *objectArchiver) Archive(ctx context.Context, game *models.Game, record *models.GameRecord) (*UploadResult, error) {
	body, err := json.Marshal(GameArchive{Game: game, Record: record})
	if err != nil {
		return nil, fmt.Errorf("encode archive for game %s: %w", game.ID, err)
	}
	res, err := a.uploader.Upload(ctx, ArchiveKey(game.ID), archiveContentType, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("archive game %s: %w", game.ID, err)
	}
	return res, nil
}

func (a *objectArchiver) Remove(ctx context.Context, gameID string) error {
	if err := a.uploader.Delete(ctx, ArchiveKey(gameID)); err != nil {
		return fmt.Errorf("remove archive of game %s: %w", gameID, err)
	}
	return nil
}

type noopArchiver struct{}

// NewNoopArchiver is used when no object storage is configured.
func NewNoopArchiver() GameArchiver {
	return noopArchiver{}
}

func (noopArchiver) Archive(context.Context, *models.Game, *models.GameRecord) (*UploadResult, error) {
	return nil, nil
}

func (noopArchiver) Remove(context.Context, string) error {
	return nil
}

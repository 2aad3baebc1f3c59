package service

import (
	"upload-form-server/config"
	"upload-form-server/internal/util"
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveService : реализация ports.DriveStore — контейнерная папка для
// response-таблиц в Google Drive
type DriveService struct {
	service *drive.Service
}

func NewDriveService(ctx context.Context, cfg *config.GoogleConfig) (*DriveService, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, util.LogError("[DriveService] не удалось создать клиент Drive", err)
	}
	return &DriveService{service: service}, nil
}

// EnsureFolder : находит папку по имени или создаёт новую
func (d *DriveService) EnsureFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("mimeType = '%s' and name = '%s' and trashed = false",
		folderMimeType, strings.ReplaceAll(name, "'", "\\'"))

	list, err := d.service.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := d.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

// MoveFile : переносит файл в папку, снимая прежних родителей
func (d *DriveService) MoveFile(ctx context.Context, fileID string, folderID string) error {
	file, err := d.service.Files.Get(fileID).Fields("parents").Context(ctx).Do()
	if err != nil {
		return err
	}

	_, err = d.service.Files.Update(fileID, nil).
		AddParents(folderID).
		RemoveParents(strings.Join(file.Parents, ",")).
		Fields("id, parents").
		Context(ctx).Do()
	return err
}

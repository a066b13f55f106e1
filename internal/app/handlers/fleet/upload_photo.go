package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/policies"
	"rentmob/internal/app/uow"
	"rentmob/internal/domain/catalog"
)

var (
	ErrEmptyPhoto       = errors.New("fleet: empty photo upload")
	ErrUnsupportedPhoto = errors.New("fleet: unsupported photo type")
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadCarPhotoCommand replaces the listing photo of a fleet car.
type UploadCarPhotoCommand struct {
	CarID       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (c UploadCarPhotoCommand) Key() string { return "fleet.upload_car_photo" }

type UploadCarPhotoResult struct {
	PhotoURL string `json:"foto"`
}

type UploadCarPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Storage    policies.ObjectStorage
}

func (h *UploadCarPhotoHandler) Handle(ctx context.Context, cmd UploadCarPhotoCommand) (*UploadCarPhotoResult, error) {
	if cmd.Body == nil || cmd.Size <= 0 {
		return nil, ErrEmptyPhoto
	}
	ext, ok := allowedPhotoTypes[strings.ToLower(cmd.ContentType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPhoto, cmd.ContentType)
	}

	unit, ok := uow.FromContext(ctx)
	managed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		managed = true
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	car, err := unit.Catalog().CarByID(ctx, catalog.CarID(cmd.CarID))
	if err != nil {
		return nil, err
	}

	key := path.Join("cars", cmd.CarID, uuid.NewString()+ext)
	obj, err := h.Storage.Put(ctx, key, cmd.Body, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("fleet: store photo: %w", err)
	}

	car.PhotoURL = obj.URL
	if err := unit.Catalog().SaveCar(ctx, car); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &UploadCarPhotoResult{PhotoURL: obj.URL}, nil
}

var _ commands.Handler[UploadCarPhotoCommand, *UploadCarPhotoResult] = (*UploadCarPhotoHandler)(nil)

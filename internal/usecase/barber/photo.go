package barber

import (
	"context"
	"errors"
	"fmt"
	"io"

	domain "github.com/BruksfildServices01/housecall-booking/internal/domain/barber"
	"github.com/BruksfildServices01/housecall-booking/internal/httperr"
	"github.com/BruksfildServices01/housecall-booking/internal/imaging"
	"github.com/BruksfildServices01/housecall-booking/internal/infra/storage"
	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

const (
	CodeInvalidImage       = "INVALID_IMAGE"
	CodeStorageUnavailable = "PHOTO_STORAGE_UNAVAILABLE"
)

type UploadPhoto struct {
	repo  domain.Repository
	store PhotoStore
	now   Clock
}

func NewUploadPhoto(repo domain.Repository, store PhotoStore, now Clock) *UploadPhoto {
	return &UploadPhoto{repo: repo, store: store, now: orNow(now)}
}

// Execute re-encodes the upload as WebP, stores it and points the barber at it.
func (uc *UploadPhoto) Execute(ctx context.Context, id uint, r io.Reader) (*models.Barber, error) {
	b, err := getBarber(ctx, uc.repo, id)
	if err != nil {
		return nil, err
	}

	body, err := imaging.ToWebP(r, imaging.DefaultMaxSide)
	if err != nil {
		return nil, httperr.Validation(CodeInvalidImage, "photo must be a JPEG, PNG or WebP image")
	}

	key := fmt.Sprintf("barbers/%d/profile-%d.webp", b.ID, uc.now().Unix())
	url, err := uc.store.Put(ctx, key, body, "image/webp")
	if errors.Is(err, storage.ErrDisabled) {
		return nil, httperr.Capacity(CodeStorageUnavailable, "photo storage is not configured")
	}
	if err != nil {
		return nil, err
	}

	b.ProfilePhotoURL = url
	if err := uc.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

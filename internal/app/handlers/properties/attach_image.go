package properties

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/policies"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	"iasrentals/internal/domain/shared/fault"
	domainuser "iasrentals/internal/domain/user"
)

const attachPropertyImageKey = "properties.images.attach"

var (
	ErrUploaderUnavailable = errors.New("properties: image uploader unavailable")
	ErrImageRequired       = fault.New(fault.BadRequest, "properties: image content is required")
)

type AttachPropertyImageCommand struct {
	ActorID     string `validate:"required"`
	PropertyID  string `validate:"required"`
	FileName    string
	ContentType string
	Reader      io.Reader
}

func (AttachPropertyImageCommand) Key() string { return attachPropertyImageKey }

type AttachPropertyImageHandler struct {
	UoWFactory uow.UoWFactory
	Uploader   policies.ImageUploader
	Logger     *slog.Logger
}

// Handle uploads the image and appends it to the property. Only the
// property owner may attach images.
func (h *AttachPropertyImageHandler) Handle(ctx context.Context, cmd AttachPropertyImageCommand) (*dto.PropertyImage, error) {
	if h.Uploader == nil {
		return nil, ErrUploaderUnavailable
	}
	if cmd.Reader == nil {
		return nil, ErrImageRequired
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	prop, err := unit.Properties().ByID(ctx, domainproperties.ID(strings.TrimSpace(cmd.PropertyID)))
	if err != nil {
		return nil, err
	}
	if !prop.BelongsTo(domainuser.ID(cmd.ActorID)) {
		return nil, domainproperties.ErrNotOwner
	}

	imageID := uuid.NewString()
	key := path.Join("properties", string(prop.ID), imageID+strings.ToLower(path.Ext(cmd.FileName)))
	publicURL, err := h.Uploader.Upload(ctx, key, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	img, err := prop.AddImage(imageID, publicURL)
	if err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("property image attached", "property_id", prop.ID, "image_id", img.ID, "primary", img.IsPrimary)
	}
	result := dto.MapPropertyImage(img)
	return &result, nil
}

var _ commands.Handler[AttachPropertyImageCommand, *dto.PropertyImage] = (*AttachPropertyImageHandler)(nil)

// Package share hands order summaries and backups to the device share sheet.
package share

import (
	"context"
	"encoding/json"
	"log/slog"

	"medtrack/internal/domain/entity"
	"medtrack/internal/domain/service"
	"medtrack/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	orderShareTitle = "Customer Order Details"

	contentTypePDF  = "application/pdf"
	contentTypePNG  = "image/png"
	contentTypeJSON = "application/json"
)

var (
	// ErrUnavailable is returned when the device reports it cannot share.
	ErrUnavailable = errors.New("sharing is not available on this device")

	// ErrNothingToShare is returned for a nil projection.
	ErrNothingToShare = errors.New("no orders to share")
)

// OrderExporter marks orders as handed off. It is the only write path
// the share service uses.
type OrderExporter interface {
	SetOrderExported(ctx context.Context, id uint, state entity.ExportState) (int64, error)
}

// DataExporter produces the backup snapshot.
type DataExporter interface {
	ExportData(ctx context.Context) (*entity.DataExport, error)
}

// Service stages share payloads, invokes the Sharer and records the hand-off.
type Service struct {
	sharer    service.Sharer
	artifacts service.ArtifactStore
	qrcodes   service.QRCodeService
	orders    OrderExporter
	data      DataExporter
	logger    *slog.Logger
}

// Params holds dependencies for Service, injected by Fx.
type Params struct {
	fx.In

	Sharer    service.Sharer
	Artifacts service.ArtifactStore
	QRCodes   service.QRCodeService
	Orders    OrderExporter
	Data      DataExporter
	Logger    *slog.Logger
}

func NewService(params Params) *Service {
	return &Service{
		sharer:    params.Sharer,
		artifacts: params.Artifacts,
		qrcodes:   params.QRCodes,
		orders:    params.Orders,
		data:      params.Data,
		logger:    params.Logger,
	}
}

// ShareText shares the plain-text order summary and marks every order exported.
func (s *Service) ShareText(ctx context.Context, userOrders *entity.UserWithOrders) error {
	if userOrders == nil {
		return ErrNothingToShare
	}
	if err := s.ensureAvailable(ctx); err != nil {
		return err
	}

	req := &service.ShareRequest{
		Title:       orderShareTitle,
		DialogTitle: "Share with " + userOrders.FullName,
		Text:        FormatOrderSummary(userOrders),
	}
	if err := s.sharer.Share(ctx, req); err != nil {
		return errors.Wrap(err, "failed to share order summary")
	}

	return s.markExported(ctx, userOrders)
}

// ShareQRCode shares the order summary rendered as a QR code.
func (s *Service) ShareQRCode(ctx context.Context, userOrders *entity.UserWithOrders) error {
	if userOrders == nil {
		return ErrNothingToShare
	}

	png, err := s.qrcodes.Encode(FormatOrderSummary(userOrders))
	if err != nil {
		return errors.Wrap(err, "failed to render order QR code")
	}

	return s.shareOrderArtifact(ctx, userOrders, "orders/"+uuid.NewString()+".png", png, contentTypePNG)
}

// ShareDocument shares a rendered order document, usually a PDF, and marks
// every order exported. The staged copy is removed after the share returns.
func (s *Service) ShareDocument(ctx context.Context, userOrders *entity.UserWithOrders, document []byte) error {
	return s.shareOrderArtifact(ctx, userOrders, "orders/"+uuid.NewString()+".pdf", document, contentTypePDF)
}

func (s *Service) shareOrderArtifact(
	ctx context.Context,
	userOrders *entity.UserWithOrders,
	key string,
	data []byte,
	contentType string,
) error {
	if userOrders == nil {
		return ErrNothingToShare
	}
	if err := s.ensureAvailable(ctx); err != nil {
		return err
	}

	location, err := s.artifacts.Put(ctx, key, data, contentType)
	if err != nil {
		return errors.Wrap(err, "failed to stage share artifact")
	}

	shareErr := s.sharer.Share(ctx, &service.ShareRequest{
		Title:       orderShareTitle,
		DialogTitle: "Share with " + userOrders.FullName,
		URL:         location,
		ContentType: contentType,
	})

	if err := s.artifacts.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to remove staged artifact", slog.String("key", key), slog.Any("error", err))
	}

	if shareErr != nil {
		return errors.Wrap(shareErr, "failed to share order document")
	}

	return s.markExported(ctx, userOrders)
}

func (s *Service) markExported(ctx context.Context, userOrders *entity.UserWithOrders) error {
	for _, order := range userOrders.Orders {
		if order.ID == 0 {
			continue
		}
		if _, err := s.orders.SetOrderExported(ctx, order.ID, entity.ExportExported); err != nil {
			return errors.Wrapf(err, "failed to mark order %d exported", order.ID)
		}
	}

	s.logger.Info("Orders shared",
		slog.Uint64("userID", uint64(userOrders.ID)),
		slog.Int("orders", len(userOrders.Orders)),
	)

	return nil
}

// ExportData writes the backup JSON as an artifact and shares it. The
// artifact is kept so the backup survives on the device.
func (s *Service) ExportData(ctx context.Context, fileName string) (string, error) {
	if err := s.ensureAvailable(ctx); err != nil {
		return "", err
	}

	export, err := s.data.ExportData(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to build backup")
	}

	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode backup")
	}

	if fileName == "" {
		fileName = "medtrack-" + export.ID + ".json"
	}
	location, err := s.artifacts.Put(ctx, "backups/"+fileName, payload, contentTypeJSON)
	if err != nil {
		return "", errors.Wrap(err, "failed to stage backup")
	}

	if err := s.sharer.Share(ctx, &service.ShareRequest{URL: location, ContentType: contentTypeJSON}); err != nil {
		return "", errors.Wrap(err, "failed to share backup")
	}

	s.logger.Info("Backup shared",
		slog.String("location", location),
		slog.String("size", util.FormatBytes(int64(len(payload)))),
		slog.String("sha256", util.Checksum(payload)),
	)

	return location, nil
}

func (s *Service) ensureAvailable(ctx context.Context) error {
	checker, ok := s.sharer.(service.ShareAvailability)
	if !ok {
		return nil
	}

	available, err := checker.CanShare(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to query share availability")
	}
	if !available {
		return ErrUnavailable
	}

	return nil
}

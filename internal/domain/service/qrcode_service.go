package service

// QRCodeService defines the interface for rendering share payloads as QR codes
type QRCodeService interface {
	// Encode renders content as a PNG image.
	Encode(content string) ([]byte, error)
}

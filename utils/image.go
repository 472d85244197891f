package utils

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// maxScanWidth caps slip photos before they are sent to the extraction
// service and archived. Phone photos routinely exceed 4000px and blow up
// request payloads for no OCR benefit.
const maxScanWidth = 2000

// NormalizeScanImage decodes a slip photo (jpg/png), downscales it when it is
// wider than maxScanWidth and re-encodes it as JPEG. Returns the encoded
// bytes and the resulting mime type.
func NormalizeScanImage(data []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("unsupported image: %w", err)
	}

	if img.Bounds().Dx() > maxScanWidth {
		img = imaging.Resize(img, maxScanWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}

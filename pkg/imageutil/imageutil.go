package imageutil

import (
	"encoding/base64"
	"fmt"
)

// EncodeToBase64 converts image bytes to a base64 string.
// The result is raw base64, without a data-URI prefix.
//
// Example:
//
//	data := []byte{0xFF, 0xD8, 0xFF}
//	encoded := EncodeToBase64(data) // Returns: "/9j/"
func EncodeToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// ConvertToDataURI converts image bytes to a data URI string.
// The bytes are base64-encoded first; see DataURIFromBase64 for a payload
// that is already encoded.
//
// Format: data:<mimeType>;base64,<base64Data>
//
// Example:
//
//	data := []byte{0x89, 0x50, 0x4E, 0x47}
//	uri := ConvertToDataURI(data, "image/png")
//	// Returns: "data:image/png;base64,iVBORw=="
func ConvertToDataURI(data []byte, mimeType string) string {
	encoded := EncodeToBase64(data)
	return fmt.Sprintf("data:%s;base64,%s", mimeType, encoded)
}

// DataURIFromBase64 joins an already-base64-encoded payload (as carried by
// an Anthropic image block's source.data) with its media type into a data
// URI, without re-encoding.
func DataURIFromBase64(mediaType, base64Data string) string {
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64Data)
}

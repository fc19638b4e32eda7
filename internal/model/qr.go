package model

// QRImage is the pairing code to display. A REST fetch yields an image
// (Data + MimeType); a push event yields the raw Code string which the
// presenter renders itself.
type QRImage struct {
	Data     []byte
	MimeType string
	Code     string
}

package common

import "strings"

type AttachmentKind int

const (
	AttachmentUnknown AttachmentKind = iota
	AttachmentImage
	AttachmentVideo
	AttachmentDocument
)

func (k AttachmentKind) String() string {
	switch k {
	case AttachmentImage:
		return "image"
	case AttachmentVideo:
		return "video"
	case AttachmentDocument:
		return "document"
	default:
		return "unknown"
	}
}

// DetectAttachmentKind classifies an upload by its MIME type.
func DetectAttachmentKind(mimeType string) AttachmentKind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return AttachmentImage
	case strings.HasPrefix(mimeType, "video/"):
		return AttachmentVideo
	case mimeType == "application/pdf":
		return AttachmentDocument
	default:
		return AttachmentUnknown
	}
}

// Package appstore is a thin client for the App Store retention
// messaging endpoints: list/upload/delete messages, list images, and
// set/clear default messages per product and locale.
package appstore

// MessageState represents the review state of a retention message
type MessageState string

const (
	MessageStatePending  MessageState = "PENDING"
	MessageStateApproved MessageState = "APPROVED"
	MessageStateRejected MessageState = "REJECTED"
)

// ImageState represents the review state of an uploaded image
type ImageState string

const (
	ImageStatePending  ImageState = "PENDING"
	ImageStateApproved ImageState = "APPROVED"
	ImageStateRejected ImageState = "REJECTED"
)

// MessageIdentifier is one message as returned by the list endpoint
type MessageIdentifier struct {
	MessageIdentifier string       `json:"messageIdentifier"`
	MessageState      MessageState `json:"messageState,omitempty"`
}

// MessageListResponse is the list-messages payload
type MessageListResponse struct {
	MessageIdentifiers []MessageIdentifier `json:"messageIdentifiers"`
}

// ImageIdentifier is one image as returned by the list endpoint
type ImageIdentifier struct {
	ImageIdentifier string     `json:"imageIdentifier"`
	ImageState      ImageState `json:"imageState,omitempty"`
}

// ImageListResponse is the list-images payload
type ImageListResponse struct {
	ImageIdentifiers []ImageIdentifier `json:"imageIdentifiers"`
}

// UploadMessageImage references a previously uploaded image by ID
type UploadMessageImage struct {
	ImageIdentifier string `json:"imageIdentifier,omitempty"`
	AltText         string `json:"altText,omitempty"`
}

// UploadMessageRequest is the body for message creation
type UploadMessageRequest struct {
	Header string              `json:"header,omitempty"`
	Body   string              `json:"body,omitempty"`
	Image  *UploadMessageImage `json:"image,omitempty"`
}

// DefaultConfigurationRequest is the body for setting a default
// message on a (product, locale) pair
type DefaultConfigurationRequest struct {
	MessageIdentifier string `json:"messageIdentifier"`
}

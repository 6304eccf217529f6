package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType classifies a movement content block or media item.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
)

// Movement is a reusable technique entry (jab, cross, slip...) referenced by steps.
type Movement struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MovementName    string             `bson:"movementName" json:"movementName"`
	MovementDesc    string             `bson:"movementDesc,omitempty" json:"movementDesc,omitempty"`
	MovementImage   string             `bson:"movementImage,omitempty" json:"movementImage,omitempty"`
	MovementContent []MovementContent  `bson:"movementContent" json:"movementContent"`
	Media           []Media            `bson:"media" json:"media"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// MovementContent is one block of a movement's instructional content.
type MovementContent struct {
	Type      ContentType `bson:"type" json:"type"`
	Value     string      `bson:"value,omitempty" json:"value,omitempty"` // text blocks, markdown
	HTML      string      `bson:"html,omitempty" json:"html,omitempty"`   // rendered from Value
	Name      string      `bson:"name,omitempty" json:"name,omitempty"`
	URL       string      `bson:"url,omitempty" json:"url,omitempty"`
	FileID    string      `bson:"fileId,omitempty" json:"fileId,omitempty"`
	ContentID string      `bson:"contentId,omitempty" json:"contentId,omitempty"`
}

// Media is an uploaded image or video attached to a movement.
type Media struct {
	URL          string      `bson:"url" json:"url"`
	Type         ContentType `bson:"type" json:"type"`
	FileID       string      `bson:"fileId" json:"fileId"` // object storage key
	OriginalName string      `bson:"originalName" json:"originalName"`
}

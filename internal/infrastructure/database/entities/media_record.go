package entities

import "time"

// MediaRecord is the relational row behind a media record.
type MediaRecord struct {
	ID           string    `gorm:"type:varchar(40);primaryKey"`
	Title        string    `gorm:"type:text;not null"`
	Description  string    `gorm:"type:text;not null"`
	ThumbnailURL string    `gorm:"type:text;not null"`
	VideoURL     string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

func (MediaRecord) TableName() string {
	return "media_records"
}

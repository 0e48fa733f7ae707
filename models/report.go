package models

// ReportSource says where a listed waste item came from.
type ReportSource string

const (
	SourceOfficial      ReportSource = "official"
	SourceUserSubmitted ReportSource = "user-submitted"
	SourceSocial        ReportSource = "social"
)

// Report is a publicly listed waste item.
type Report struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Location    string       `gorm:"not null" json:"location"`
	Year        int          `gorm:"not null" json:"year"`
	Shares      int64        `gorm:"default:0;not null;index" json:"shares"`
	Source      ReportSource `gorm:"type:varchar(20);default:'official';not null" json:"source"`
	Evidence    *string      `gorm:"type:text" json:"evidence,omitempty"`

	// Social post metadata
	AuthorHandle *string `json:"author_handle,omitempty"`
	PlatformIcon *string `json:"platform_icon,omitempty"`
	PostURL      *string `gorm:"type:text" json:"post_url,omitempty"`
}

func (Report) TableName() string {
	return "waste_items"
}

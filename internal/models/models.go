package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SectionAdmin      = "Admin"
	SectionManagement = "Management"
)

// Departments is the fixed list of sections a product can belong to.
var Departments = []string{
	"PRODUCE",
	"BAKERY",
	"BUTCHERY",
	"DELI",
	"DAIRY",
	"FROZEN",
	"GROCERY",
	"BEVERAGES",
	"CLEANING",
	"HYGIENE",
}

const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorRed    = "red"
	ColorBlue   = "blue"
)

var StatusColors = []string{ColorGreen, ColorYellow, ColorRed, ColorBlue}

const (
	DefaultStatusColor   = ColorBlue
	DefaultStatusMessage = "all operating"
)

// StatusRowID is the primary key of the singleton status row.
const StatusRowID = 1

type Product struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"         json:"id"`
	Code         string    `gorm:"index;not null"                   json:"code"`
	Name         string    `gorm:"not null"                         json:"name"`
	ExpiryDate   string    `gorm:"type:varchar(10);index;not null"  json:"expiry_date"`
	Lot          string    `gorm:"not null;default:''"              json:"lot"`
	Quantity     int       `gorm:"not null;check:quantity >= 1"     json:"quantity"`
	RegisteredAt time.Time `gorm:"not null"                         json:"registered_at"`
	Section      string    `gorm:"index;not null"                   json:"section"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"             json:"-"`
	Section      string    `gorm:"not null"             json:"section"`
	CreatedAt    time.Time `                            json:"created_at"`
}

type Status struct {
	ID        uint      `gorm:"primaryKey"   json:"-"`
	Color     string    `gorm:"not null"     json:"color"`
	Message   string    `gorm:"not null"     json:"message"`
	UpdatedAt time.Time `                    json:"updated_at"`
	UpdatedBy string    `                    json:"updated_by"`
}

type StatusEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Color     string    `gorm:"not null"                 json:"color"`
	Message   string    `gorm:"not null"                 json:"message"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
	CreatedBy string    `                                json:"created_by"`
}

type Session struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:char(36);index" json:"user_id"`
	Username    string    `gorm:"not null"             json:"username"`
	Section     string    `gorm:"not null"             json:"section"`
	RefreshHash string    `gorm:"not null"             json:"-"`
	ExpiresAt   int64     `gorm:"not null"             json:"expires_at"`
	Revoked     bool      `gorm:"default:false"        json:"revoked"`
	CreatedAt   time.Time `                            json:"created_at"`
}

// DefaultStatus is the banner shown while no status has been stored.
func DefaultStatus() Status {
	return Status{ID: StatusRowID, Color: DefaultStatusColor, Message: DefaultStatusMessage}
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && s.ExpiresAt > now.Unix()
}

func IsDepartment(section string) bool {
	for _, d := range Departments {
		if d == section {
			return true
		}
	}
	return false
}

// IsUserSection reports whether section is a valid access scope for a user.
func IsUserSection(section string) bool {
	return section == SectionAdmin || section == SectionManagement || IsDepartment(section)
}

// SeesAllSections reports whether users of the section may read every department.
func SeesAllSections(section string) bool {
	return section == SectionAdmin || section == SectionManagement
}

func IsStatusColor(color string) bool {
	for _, c := range StatusColors {
		if c == color {
			return true
		}
	}
	return false
}

func AllModels() []any {
	return []any{&Product{}, &User{}, &Status{}, &StatusEntry{}, &Session{}}
}

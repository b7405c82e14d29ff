// Package fixture is an in-process stand-in for the upstream archive API. It
// stores seeded records in an in-memory SQLite database and serves them in the
// same loosely shaped wire format as the real backend.
package fixture

import (
	"time"
)

// Kategori is a stored letter category
type Kategori struct {
	ID        int64   `gorm:"primaryKey;autoIncrement:true"`
	Nama      string  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Deskripsi *string `gorm:"type:varchar(500)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Kategori) TableName() string {
	return "kategori"
}

// SuratMasuk is a stored incoming letter. Dates are YYYY-MM-DD strings.
type SuratMasuk struct {
	ID              int64     `gorm:"primaryKey;autoIncrement:true"`
	NomorSurat      string    `gorm:"type:varchar(100);not null;index"`
	Perihal         string    `gorm:"type:varchar(255);not null"`
	Pengirim        string    `gorm:"type:varchar(255);index"`
	TanggalSurat    string    `gorm:"type:varchar(10);not null;index"`
	TanggalDiterima string    `gorm:"type:varchar(10);not null"`
	KategoriID      int64     `gorm:"not null;index"`
	Kategori        *Kategori `gorm:"foreignKey:KategoriID"`
	Keterangan      *string   `gorm:"type:text"`
	FilePath        *string   `gorm:"type:varchar(500)"`
	Kecamatan       *string   `gorm:"type:varchar(100);index"`
	Desa            *string   `gorm:"type:varchar(100);index"`
	NomorAgenda     *string   `gorm:"type:varchar(100)"`
	BidangTujuan    *string   `gorm:"type:varchar(255)"`
	Disposisi       *string   `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (SuratMasuk) TableName() string {
	return "surat_masuk"
}

// SuratKeluar is a stored outgoing letter
type SuratKeluar struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:true"`
	NomorSurat   string    `gorm:"type:varchar(100);not null;index"`
	Perihal      string    `gorm:"type:varchar(255);not null"`
	Penerima     string    `gorm:"type:varchar(255);index"`
	TanggalSurat string    `gorm:"type:varchar(10);not null;index"`
	KategoriID   int64     `gorm:"not null;index"`
	Kategori     *Kategori `gorm:"foreignKey:KategoriID"`
	Keterangan   *string   `gorm:"type:text"`
	FilePath     *string   `gorm:"type:varchar(500)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SuratKeluar) TableName() string {
	return "surat_keluar"
}

// LetterFilters defines filter options for letter listing
type LetterFilters struct {
	Search     string
	CategoryID int64
	DateFrom   string
	DateTo     string
	District   string
	Village    string
	Sort       string
}

// MonthCount is one bucket of a per-period letter count
type MonthCount struct {
	Period   string
	Incoming int
	Outgoing int
}

// Stats holds aggregate counts for the dashboard
type Stats struct {
	TotalIncoming     int64
	TotalOutgoing     int64
	IncomingThisMonth int64
	OutgoingThisMonth int64
	Chart             []MonthCount
}

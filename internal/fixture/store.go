package fixture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/straye-as/earsip/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MaxPageSize is the maximum allowed page size for list queries
const MaxPageSize = 100

var (
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("record conflicts with existing data")
	ErrUnknownCategory = errors.New("category does not exist")
)

// letterSortOrders maps sort keys to ORDER BY clauses (whitelist approach)
var letterSortOrders = map[string]string{
	"newest":      "tanggal_surat DESC, id DESC",
	"oldest":      "tanggal_surat ASC, id ASC",
	"number_asc":  "nomor_surat ASC, id ASC",
	"number_desc": "nomor_surat DESC, id DESC",
}

// Store persists fixture records in an in-memory SQLite database
type Store struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

// NewStore opens a fresh database and seeds it from cfg. A nil now uses time.Now.
func NewStore(cfg *config.MockConfig, now func() time.Time, logger *zap.Logger) (*Store, error) {
	if now == nil {
		now = time.Now
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Kategori{}, &SuratMasuk{}, &SuratKeluar{}); err != nil {
		return nil, fmt.Errorf("failed to migrate fixture database: %w", err)
	}

	s := &Store{db: db, now: now, logger: logger}
	if err := s.seed(cfg.Seed, cfg.Letters); err != nil {
		return nil, fmt.Errorf("failed to seed fixture database: %w", err)
	}

	logger.Info("fixture backend ready",
		zap.Int64("seed", cfg.Seed),
		zap.Int("letters_per_kind", cfg.Letters),
	)
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListCategories returns every category ordered by name
func (s *Store) ListCategories(ctx context.Context) ([]Kategori, error) {
	var categories []Kategori
	err := s.db.WithContext(ctx).Order("nama ASC").Find(&categories).Error
	return categories, err
}

// GetCategory retrieves a category by its ID
func (s *Store) GetCategory(ctx context.Context, id int64) (*Kategori, error) {
	var category Kategori
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// CreateCategory stores a new category; names are unique case-insensitively
func (s *Store) CreateCategory(ctx context.Context, category *Kategori) error {
	if err := s.ensureUniqueCategory(ctx, category.Nama, 0); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory changes the name and/or description of a category
func (s *Store) UpdateCategory(ctx context.Context, id int64, nama string, deskripsi *string) (*Kategori, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if nama != "" {
		if err := s.ensureUniqueCategory(ctx, nama, id); err != nil {
			return nil, err
		}
		category.Nama = nama
	}
	if deskripsi != nil {
		category.Deskripsi = deskripsi
	}
	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category that no letter references
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	var inUse int64
	for _, model := range []any{&SuratMasuk{}, &SuratKeluar{}} {
		var n int64
		if err := s.db.WithContext(ctx).Model(model).Where("kategori_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		inUse += n
	}
	if inUse > 0 {
		return fmt.Errorf("%w: category %d is used by %d letters", ErrConflict, id, inUse)
	}

	res := s.db.WithContext(ctx).Delete(&Kategori{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ensureUniqueCategory(ctx context.Context, nama string, exceptID int64) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&Kategori{}).
		Where("LOWER(nama) = LOWER(?) AND id != ?", strings.TrimSpace(nama), exceptID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q already exists", ErrConflict, nama)
	}
	return nil
}

func (s *Store) ensureCategory(ctx context.Context, id int64) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownCategory
		}
		return err
	}
	return nil
}

// ListIncoming returns a page of incoming letters with the total match count
func (s *Store) ListIncoming(ctx context.Context, filters LetterFilters, page, perPage int) ([]SuratMasuk, int64, error) {
	var letters []SuratMasuk
	query := s.db.WithContext(ctx).Model(&SuratMasuk{})
	query = applyLetterFilters(query, filters, "pengirim")
	if filters.District != "" {
		query = query.Where("LOWER(kecamatan) = LOWER(?)", filters.District)
	}
	if filters.Village != "" {
		query = query.Where("LOWER(desa) = LOWER(?)", filters.Village)
	}

	total, err := paginate(query, filters.Sort, page, perPage, &letters)
	return letters, total, err
}

// GetIncoming retrieves an incoming letter with its category
func (s *Store) GetIncoming(ctx context.Context, id int64) (*SuratMasuk, error) {
	var letter SuratMasuk
	err := s.db.WithContext(ctx).Preload("Kategori").Where("id = ?", id).First(&letter).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &letter, nil
}

// CreateIncoming stores a new incoming letter
func (s *Store) CreateIncoming(ctx context.Context, letter *SuratMasuk) error {
	if err := s.ensureCategory(ctx, letter.KategoriID); err != nil {
		return err
	}
	if letter.TanggalDiterima == "" {
		letter.TanggalDiterima = letter.TanggalSurat
	}
	letter.Kategori = nil
	if err := s.db.WithContext(ctx).Create(letter).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Preload("Kategori").First(letter, letter.ID).Error
}

// UpdateIncoming applies column updates to an incoming letter
func (s *Store) UpdateIncoming(ctx context.Context, id int64, updates map[string]any) (*SuratMasuk, error) {
	if categoryID, ok := updates["kategori_id"].(int64); ok {
		if err := s.ensureCategory(ctx, categoryID); err != nil {
			return nil, err
		}
	}
	if _, err := s.GetIncoming(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&SuratMasuk{ID: id}).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetIncoming(ctx, id)
}

// DeleteIncoming removes an incoming letter
func (s *Store) DeleteIncoming(ctx context.Context, id int64) error {
	return deleteByID(s.db.WithContext(ctx), &SuratMasuk{}, id)
}

// ListOutgoing returns a page of outgoing letters with the total match count
func (s *Store) ListOutgoing(ctx context.Context, filters LetterFilters, page, perPage int) ([]SuratKeluar, int64, error) {
	var letters []SuratKeluar
	query := applyLetterFilters(s.db.WithContext(ctx).Model(&SuratKeluar{}), filters, "penerima")

	total, err := paginate(query, filters.Sort, page, perPage, &letters)
	return letters, total, err
}

// GetOutgoing retrieves an outgoing letter with its category
func (s *Store) GetOutgoing(ctx context.Context, id int64) (*SuratKeluar, error) {
	var letter SuratKeluar
	err := s.db.WithContext(ctx).Preload("Kategori").Where("id = ?", id).First(&letter).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &letter, nil
}

// CreateOutgoing stores a new outgoing letter
func (s *Store) CreateOutgoing(ctx context.Context, letter *SuratKeluar) error {
	if err := s.ensureCategory(ctx, letter.KategoriID); err != nil {
		return err
	}
	letter.Kategori = nil
	if err := s.db.WithContext(ctx).Create(letter).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Preload("Kategori").First(letter, letter.ID).Error
}

// UpdateOutgoing applies column updates to an outgoing letter
func (s *Store) UpdateOutgoing(ctx context.Context, id int64, updates map[string]any) (*SuratKeluar, error) {
	if categoryID, ok := updates["kategori_id"].(int64); ok {
		if err := s.ensureCategory(ctx, categoryID); err != nil {
			return nil, err
		}
	}
	if _, err := s.GetOutgoing(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&SuratKeluar{ID: id}).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetOutgoing(ctx, id)
}

// DeleteOutgoing removes an outgoing letter
func (s *Store) DeleteOutgoing(ctx context.Context, id int64) error {
	return deleteByID(s.db.WithContext(ctx), &SuratKeluar{}, id)
}

// Stats computes dashboard totals and the last six months of counts
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	thisMonth := monthStart.Format("2006-01-02")
	chartStart := monthStart.AddDate(0, -5, 0)

	stats := &Stats{}
	db := s.db.WithContext(ctx)
	if err := db.Model(&SuratMasuk{}).Count(&stats.TotalIncoming).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&SuratKeluar{}).Count(&stats.TotalOutgoing).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&SuratMasuk{}).Where("tanggal_surat >= ?", thisMonth).Count(&stats.IncomingThisMonth).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&SuratKeluar{}).Where("tanggal_surat >= ?", thisMonth).Count(&stats.OutgoingThisMonth).Error; err != nil {
		return nil, err
	}

	periods := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		periods = append(periods, chartStart.AddDate(0, i, 0).Format("2006-01"))
	}

	chart, err := s.countByPeriod(ctx, 7, chartStart.Format("2006-01-02"), "9999-12-31", periods, "all")
	if err != nil {
		return nil, err
	}
	stats.Chart = chart
	return stats, nil
}

// Summary counts letters per day of a month or per month of a year
func (s *Store) Summary(ctx context.Context, entity, period string, month, year int) ([]MonthCount, error) {
	if year <= 0 {
		year = s.now().Year()
	}

	if period == "yearly" {
		periods := make([]string, 12)
		for i := range periods {
			periods[i] = fmt.Sprintf("%04d-%02d", year, i+1)
		}
		return s.countByPeriod(ctx, 7, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year), periods, entity)
	}

	if month < 1 || month > 12 {
		month = int(s.now().Month())
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	periods := make([]string, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		periods = append(periods, d.Format("2006-01-02"))
	}
	return s.countByPeriod(ctx, 10, first.Format("2006-01-02"), last.Format("2006-01-02"), periods, entity)
}

type periodCount struct {
	Period string
	Total  int
}

// countByPeriod groups letters by the first width characters of tanggal_surat
func (s *Store) countByPeriod(ctx context.Context, width int, from, to string, periods []string, entity string) ([]MonthCount, error) {
	buckets := make(map[string]*MonthCount, len(periods))
	out := make([]MonthCount, len(periods))
	for i, p := range periods {
		out[i] = MonthCount{Period: p}
		buckets[p] = &out[i]
	}

	selectClause := fmt.Sprintf("substr(tanggal_surat, 1, %d) AS period, COUNT(*) AS total", width)
	count := func(model any, apply func(*MonthCount, int)) error {
		var rows []periodCount
		err := s.db.WithContext(ctx).Model(model).
			Select(selectClause).
			Where("tanggal_surat >= ? AND tanggal_surat <= ?", from, to).
			Group("period").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			if b, ok := buckets[row.Period]; ok {
				apply(b, row.Total)
			}
		}
		return nil
	}

	if entity != "outgoing" {
		if err := count(&SuratMasuk{}, func(b *MonthCount, n int) { b.Incoming = n }); err != nil {
			return nil, err
		}
	}
	if entity != "incoming" {
		if err := count(&SuratKeluar{}, func(b *MonthCount, n int) { b.Outgoing = n }); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applyLetterFilters(query *gorm.DB, filters LetterFilters, partyColumn string) *gorm.DB {
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"(LOWER(nomor_surat) LIKE ? OR LOWER(perihal) LIKE ? OR LOWER("+partyColumn+") LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if filters.CategoryID > 0 {
		query = query.Where("kategori_id = ?", filters.CategoryID)
	}
	if filters.DateFrom != "" {
		query = query.Where("tanggal_surat >= ?", filters.DateFrom)
	}
	if filters.DateTo != "" {
		query = query.Where("tanggal_surat <= ?", filters.DateTo)
	}
	return query
}

func paginate[T any](query *gorm.DB, sort string, page, perPage int, dest *[]T) (int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	order, ok := letterSortOrders[sort]
	if !ok {
		order = letterSortOrders["newest"]
	}

	err := query.Preload("Kategori").
		Order(order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(dest).Error
	return total, err
}

func deleteByID(db *gorm.DB, model any, id int64) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

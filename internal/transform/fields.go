package transform

// Upstream key candidates, highest priority first. Both the Laravel backend
// (Indonesian names) and the newer English API are covered.
var (
	IDKeys = []string{"id", "id_surat"}

	IncomingLetterNumberKeys = []string{"no_letter", "no_surat", "nomor_surat", "no_surat_masuk", "number", "nomor"}
	OutgoingLetterNumberKeys = []string{"no_letter", "no_surat", "nomor_surat", "no_surat_keluar", "number", "nomor"}

	SubjectKeys          = []string{"subject", "perihal", "judul_surat", "judul", "hal"}
	SenderKeys           = []string{"sender", "pengirim", "asal_surat", "from"}
	RecipientKeys        = []string{"recipient", "penerima", "tujuan", "tujuan_surat", "to"}
	LetterDateKeys       = []string{"letter_date", "tanggal_surat", "tanggal", "tgl_surat", "date"}
	ReceivedDateKeys     = []string{"received_date", "tanggal_diterima", "tanggal_masuk", "tgl_terima", "tgl_diterima"}
	CategoryIDKeys       = []string{"category_id", "kategori_id", "id_kategori", "category.id", "kategori.id"}
	CategoryObjectKeys   = []string{"category", "kategori"}
	CategoryNameKeys     = []string{"name", "nama", "nama_kategori", "title"}
	CategoryDescKeys     = []string{"description", "deskripsi", "keterangan"}
	NoteKeys             = []string{"note", "keterangan", "catatan", "notes", "description"}
	AttachmentKeys       = []string{"file_path", "file_url", "file"}
	DistrictKeys         = []string{"district", "kecamatan"}
	VillageKeys          = []string{"village", "desa", "kelurahan"}
	AgendaNumberKeys     = []string{"agenda_number", "nomor_agenda", "no_agenda"}
	DispositionDeptKeys  = []string{"disposition_department", "bidang_tujuan", "disposisi_bidang", "department"}
	DispositionInstrKeys = []string{"disposition_instruction", "disposisi", "instruksi_disposisi", "instruction"}
	CreatedAtKeys        = []string{"created_at", "createdAt", "dibuat_pada"}
	UpdatedAtKeys        = []string{"updated_at", "updatedAt", "diperbarui_pada"}
)

// Pagination metadata candidates. meta.* wins over Laravel's data.* and root-level keys.
var (
	CurrentPageKeys = []string{"meta.current_page", "data.current_page", "current_page", "pagination.current_page", "meta.page", "page"}
	PerPageKeys     = []string{"meta.per_page", "data.per_page", "per_page", "pagination.per_page", "meta.limit", "limit"}
	TotalKeys       = []string{"meta.total", "data.total", "total", "pagination.total", "meta.total_items"}
	LastPageKeys    = []string{"meta.last_page", "data.last_page", "last_page", "pagination.last_page", "meta.total_pages", "total_pages"}
	FromKeys        = []string{"meta.from", "data.from", "from", "pagination.from"}
	ToKeys          = []string{"meta.to", "data.to", "to", "pagination.to"}

	// ItemKeys are the envelope locations of a list payload's item array
	ItemKeys = []string{"data", "data.data", "records"}
)

// Dashboard candidates
var (
	TotalIncomingKeys = []string{
		"total_incoming", "total_surat_masuk", "incoming_total", "surat_masuk_total",
		"totals.incoming", "overview.total_incoming", "overview.total_surat_masuk",
	}
	TotalOutgoingKeys = []string{
		"total_outgoing", "total_surat_keluar", "outgoing_total", "surat_keluar_total",
		"totals.outgoing", "overview.total_outgoing", "overview.total_surat_keluar",
	}
	IncomingThisMonthKeys = []string{
		"incoming_this_month", "surat_masuk_bulan_ini", "total_surat_masuk_bulan_ini",
		"this_month.incoming", "overview.incoming_this_month", "overview.surat_masuk_bulan_ini",
	}
	OutgoingThisMonthKeys = []string{
		"outgoing_this_month", "surat_keluar_bulan_ini", "total_surat_keluar_bulan_ini",
		"this_month.outgoing", "overview.outgoing_this_month", "overview.surat_keluar_bulan_ini",
	}

	ChartKeys = []string{"chart_data", "charts", "chart", "overview.chart", "overview_data.chart"}

	PointDateKeys     = []string{"date", "tanggal", "label", "period", "month", "bulan"}
	PointIncomingKeys = []string{"incoming_count", "incoming", "surat_masuk", "masuk", "total_masuk"}
	PointOutgoingKeys = []string{"outgoing_count", "outgoing", "surat_keluar", "keluar", "total_keluar"}

	SummaryKeys = []string{"summary", "narrative", "ringkasan", "description"}
)

// Auth candidates
var (
	TokenKeys     = []string{"data.token", "data.access_token", "token", "access_token"}
	UserKeys      = []string{"data.user", "user", "data"}
	UserIDKeys    = []string{"id", "user_id"}
	UserNameKeys  = []string{"name", "nama", "full_name", "username"}
	UserEmailKeys = []string{"email", "surel"}
	UserRoleKeys  = []string{"role", "peran", "level"}
)

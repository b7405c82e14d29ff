package fixture

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

var seedCategories = []struct {
	nama, kode, deskripsi string
}{
	{"Undangan", "UND", "Undangan rapat dan kegiatan"},
	{"Edaran", "SE", "Surat edaran pimpinan"},
	{"Keuangan", "KEU", "Anggaran, SPJ, dan pencairan dana"},
	{"Kepegawaian", "KPG", "Mutasi, cuti, dan kenaikan pangkat"},
	{"Pengaduan", "PGD", "Pengaduan dan aspirasi masyarakat"},
	{"Laporan", "LAP", "Laporan kegiatan desa"},
}

var (
	seedSenders = []string{
		"Sekretariat Daerah", "Dinas Sosial", "Camat Sungai Raya", "Kepala Desa Kapur",
		"BPKAD", "Inspektorat", "BKPSDM", "Dinas Kesehatan",
	}
	seedRecipients = []string{
		"Bupati Kubu Raya", "Camat Sungai Kakap", "Kepala Desa Rasau Jaya", "Dinas Pendidikan",
		"DPRD Kabupaten", "Kementerian Desa",
	}
	seedSubjects = []string{
		"Undangan rapat koordinasi", "Permohonan data penduduk", "Laporan realisasi dana desa",
		"Pemberitahuan jadwal monitoring", "Permohonan bantuan sosial", "Penyampaian hasil musyawarah desa",
		"Usulan kenaikan pangkat", "Tindak lanjut pengaduan warga",
	}
	seedDistricts = map[string][]string{
		"Sungai Raya":     {"Kapur", "Arang Limbung", "Kuala Dua"},
		"Sungai Kakap":    {"Punggur Kecil", "Sungai Rengas", "Jeruju Besar"},
		"Rasau Jaya":      {"Rasau Jaya Satu", "Bintang Mas"},
		"Sungai Ambawang": {"Jawa Tengah", "Pancaroba"},
	}
	seedDepartments  = []string{"Pemerintahan Desa", "Pemberdayaan Masyarakat", "Sekretariat", "Keuangan"}
	seedDispositions = []string{"Tindak lanjuti", "Untuk diketahui", "Siapkan bahan rapat", "Koordinasikan dengan camat"}
)

// seed fills the database deterministically: the same seed yields the same records
func (s *Store) seed(seed int64, letters int) error {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	db := s.db

	codes := make(map[int64]string, len(seedCategories))
	ids := make([]int64, 0, len(seedCategories))
	for _, c := range seedCategories {
		deskripsi := c.deskripsi
		row := Kategori{Nama: c.nama, Deskripsi: &deskripsi}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		codes[row.ID] = c.kode
		ids = append(ids, row.ID)
	}

	districts := make([]string, 0, len(seedDistricts))
	for d := range seedDistricts {
		districts = append(districts, d)
	}
	// map order is random
	slices.Sort(districts)

	today := s.now()
	for i := 0; i < letters; i++ {
		categoryID := ids[rng.IntN(len(ids))]
		date := today.AddDate(0, 0, -rng.IntN(180))
		received := date.AddDate(0, 0, rng.IntN(4))
		if received.After(today) {
			received = today
		}
		district := districts[rng.IntN(len(districts))]
		villages := seedDistricts[district]

		in := SuratMasuk{
			NomorSurat:      fmt.Sprintf("%03d/%s/%d", i+1, codes[categoryID], date.Year()),
			Perihal:         pick(rng, seedSubjects),
			Pengirim:        pick(rng, seedSenders),
			TanggalSurat:    date.Format("2006-01-02"),
			TanggalDiterima: received.Format("2006-01-02"),
			KategoriID:      categoryID,
			Kecamatan:       ptr(district),
			Desa:            ptr(pick(rng, villages)),
			NomorAgenda:     ptr(fmt.Sprintf("AG-%04d", i+1)),
		}
		if rng.IntN(3) == 0 {
			in.BidangTujuan = ptr(pick(rng, seedDepartments))
			in.Disposisi = ptr(pick(rng, seedDispositions))
		}
		if rng.IntN(2) == 0 {
			in.FilePath = ptr(fmt.Sprintf("surat-masuk/%d/%03d.pdf", date.Year(), i+1))
		}
		if err := db.Create(&in).Error; err != nil {
			return err
		}

		outCategory := ids[rng.IntN(len(ids))]
		outDate := today.AddDate(0, 0, -rng.IntN(180))
		out := SuratKeluar{
			NomorSurat:   fmt.Sprintf("%03d/SK-%s/%d", i+1, codes[outCategory], outDate.Year()),
			Perihal:      pick(rng, seedSubjects),
			Penerima:     pick(rng, seedRecipients),
			TanggalSurat: outDate.Format("2006-01-02"),
			KategoriID:   outCategory,
		}
		if rng.IntN(4) == 0 {
			out.Keterangan = ptr("Tembusan kepada camat")
		}
		if err := db.Create(&out).Error; err != nil {
			return err
		}
	}
	return nil
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.IntN(len(values))]
}

func ptr(s string) *string {
	return &s
}

// monthName renders a month in Indonesian for report narratives
func monthName(m time.Month) string {
	names := [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember"}
	return names[m-1]
}

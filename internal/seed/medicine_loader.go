package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"medstock/m/domain"
	"medstock/m/internal/records"
)

// LoadMedicines ingests a medicine catalog CSV through the normal create
// path, so every imported row is allocated a fresh sequential ID. Expected
// columns: name, supplier_id, form_dosage, low_stock_limit, expiry_date,
// batch_number, barcode_number, notes. Rows already present (same name and
// form/dosage) are skipped.
func LoadMedicines(svc *records.Service, actor domain.Actor, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		logrus.Warnf("unable to load medicine catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		logrus.Warnf("unable to read medicine header: %v", err)
		return
	}

	existing := map[string]bool{}
	for _, m := range svc.ListMedicines() {
		existing[medicineKey(m.Name, m.FormDosage)] = true
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.Warnf("unable to read medicine row: %v", err)
			continue
		}
		if len(record) < 3 {
			continue
		}
		in := records.MedicineInput{
			Name:       strings.TrimSpace(record[0]),
			SupplierID: strings.TrimSpace(record[1]),
			FormDosage: strings.TrimSpace(record[2]),
		}
		if in.Name == "" || existing[medicineKey(in.Name, in.FormDosage)] {
			continue
		}
		if len(record) > 3 {
			in.LowStockLimit, _ = strconv.Atoi(strings.TrimSpace(record[3]))
		}
		if len(record) > 4 {
			in.ExpiryDate = strings.TrimSpace(record[4])
		}
		if len(record) > 5 {
			in.BatchNumber = strings.TrimSpace(record[5])
		}
		if len(record) > 6 {
			in.BarcodeNumber = strings.TrimSpace(record[6])
		}
		if len(record) > 7 {
			in.Notes = strings.TrimSpace(record[7])
		}

		if _, err := svc.CreateMedicine(actor, in); err != nil {
			logrus.Warnf("unable to import medicine %s: %v", in.Name, err)
			continue
		}
		existing[medicineKey(in.Name, in.FormDosage)] = true
		rows++
	}

	logrus.Infof("seeded medicine catalog with %d rows", rows)
}

func medicineKey(name, formDosage string) string {
	return strings.ToLower(name) + "|" + strings.ToLower(formDosage)
}

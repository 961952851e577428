package sources

import (
	"context"
	"fmt"
	"path/filepath"

	"gdra/pkg/contracts/domain"
)

const wdiFile = "WDICSV.csv"

// wdiIndicators maps World Bank indicator codes to the fields they
// feed. The bulk file carries some 1500 indicators; everything else is
// skipped while streaming.
var wdiIndicators = map[string]string{
	"NY.GDP.MKTP.KD.ZG": domain.FieldGDPGrowth,
	"NY.GDP.PCAP.KD":    domain.FieldGDPPerCapita,
	"NY.GDP.PCAP.PP.KD": domain.FieldGDPPerCapitaPPP,
	"SI.POV.GINI":       domain.FieldGiniIndex,
	"SI.POV.DDAY":       domain.FieldPovertyRate,
	"SH.MED.BEDS.ZS":    domain.FieldHospitalBedsPer1K,
	"SH.MED.PHYS.ZS":    domain.FieldPhysiciansPer1K,
	"IT.NET.USER.ZS":    domain.FieldInternetUsersPct,
	"SE.ADT.LITR.ZS":    domain.FieldLiteracyRate,
	"SE.SEC.ENRR":       domain.FieldSecondaryEnrollment,
	"SP.POP.TOTL":       domain.FieldPopulation,
	"SP.URB.TOTL.IN.ZS": domain.FieldUrbanPopulationPct,
	"SH.XPD.CHEX.GD.ZS": domain.FieldHealthExpenditurePctGDP,
	"EG.ELC.ACCS.ZS":    domain.FieldElectricityAccessPct,
	"SH.STA.BASS.ZS":    domain.FieldSanitationAccessPct,
	"SH.H2O.BASW.ZS":    domain.FieldWaterAccessPct,
	"AG.LND.FRST.ZS":    domain.FieldForestAreaPct,
	"EN.ATM.CO2E.PC":    domain.FieldCO2EmissionsPerCapita,
	"IC.BUS.EASE.XQ":    domain.FieldEaseDoingBusiness,
	"FP.CPI.TOTL.ZG":    domain.FieldInflationWDI,
}

// WDI loads the World Bank World Development Indicators bulk CSV. The
// file runs to hundreds of megabytes, so rows are streamed rather than
// materialized; each row is one (country, indicator) series with one
// column per year.
type WDI struct{}

// Source implements Adapter.
func (WDI) Source() string { return domain.SourceWDI }

// Parse implements Adapter.
func (WDI) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	path := filepath.Join(pc.Dir, wdiFile)
	rs := newRecordSet(domain.SourceWDI)

	var (
		countryCol   int
		indicatorCol int
		years        map[int]int
	)

	err := streamCSV(ctx, path, func(i int, row []string) error {
		if i == 0 {
			header := headerIndex(row)
			var ok bool
			countryCol, ok = header["country code"]
			if !ok {
				return fmt.Errorf("%s has no Country Code column", wdiFile)
			}
			indicatorCol, ok = header["indicator code"]
			if !ok {
				return fmt.Errorf("%s has no Indicator Code column", wdiFile)
			}
			years = yearColumns(row)
			return nil
		}

		pc.Counters.RowsRead++
		field, ok := wdiIndicators[cellAt(row, indicatorCol)]
		if !ok {
			return nil
		}
		code, ok := pc.resolveCode(cellAt(row, countryCol))
		if !ok {
			return nil
		}
		for year, col := range years {
			if year < pc.YearStart || year > pc.YearEnd {
				continue
			}
			if v, ok := parseFloat(cellAt(row, col)); ok {
				rs.Set(code, year, field, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, missingAsUnavailable(err, wdiFile)
	}

	return emit(pc, rs), nil
}

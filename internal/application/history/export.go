package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/stress-shield-api/internal/domain"
)

var exportHeader = []string{
	"id", "timestamp", "heart_rate", "skin_conductance", "temperature", "stress_level", "stress_score",
}

type encoder struct {
	contentType string
	write       func(w io.Writer, rows []domain.Reading) error
}

var encoders = map[string]encoder{
	FormatCSV:  {contentType: "text/csv", write: writeCSV},
	FormatXLSX: {contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", write: writeXLSX},
}

func exportRecord(rd domain.Reading) []string {
	return []string{
		rd.ReadingID,
		rd.CreatedAt.UTC().Format(time.RFC3339),
		strconv.FormatFloat(rd.HeartRate, 'f', -1, 64),
		strconv.FormatFloat(rd.SkinConductance, 'f', -1, 64),
		strconv.FormatFloat(rd.Temperature, 'f', -1, 64),
		string(rd.StressLevel),
		strconv.FormatFloat(rd.StressScore, 'f', 2, 64),
	}
}

func writeCSV(w io.Writer, rows []domain.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, rd := range rows {
		if err := cw.Write(exportRecord(rd)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Readings"

func writeXLSX(w io.Writer, rows []domain.Reading) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, rd := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			rd.ReadingID,
			rd.CreatedAt.UTC().Format(time.RFC3339),
			rd.HeartRate,
			rd.SkinConductance,
			rd.Temperature,
			string(rd.StressLevel),
			rd.StressScore,
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	_, err := f.WriteTo(w)
	return err
}

package tasks

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

// ParseImportFile reads cards from a .json or .csv file.
func ParseImportFile(path string) ([]models.CreateCardRequest, error) {
	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(bytes.NewReader(data))
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: unsupported import format %q (use .json or .csv)", shared.ErrInvalidArgument, filepath.Ext(path))
	}
}

// ParseJSON decodes an array of card objects.
func ParseJSON(r io.Reader) ([]models.CreateCardRequest, error) {
	var reqs []models.CreateCardRequest
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON card list: %v", shared.ErrInvalidInput, err)
	}
	return reqs, nil
}

// ParseCSV reads rows of front, back, tags and deck. Tags are separated by ";" and the last two columns are optional.
// A header row starting with "front" is skipped.
func ParseCSV(r io.Reader) ([]models.CreateCardRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var reqs []models.CreateCardRequest
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "front") {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected at least front and back", shared.ErrInvalidInput, line)
		}

		req := models.CreateCardRequest{Front: record[0], Back: record[1]}
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			req.Tags = strings.Split(record[2], ";")
		}
		if len(record) > 3 {
			if deck := strings.TrimSpace(record[3]); deck != "" {
				req.DeckID = &deck
			}
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Package store keeps the files of one reporting period:
//
//	<root>/<period>/codes/<category>_<action>
//	<root>/<period>/json/<category>_<billing>_<action>.json
//	<root>/<period>/csv/<category>_<gender>_<period>.csv
//	<root>/<period>/xls/<category>_<gender>_<period>.xlsx
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mariinsky-counter/internal/attendance"
)

var ErrNotFound = errors.New("not found")

// Store is rooted at the directory of a single period.
type Store struct {
	period string
	dir    string
}

func New(root, period string) Store {
	return Store{
		period: period,
		dir:    filepath.Join(root, period),
	}
}

func (s Store) Period() string {
	return s.period
}

func (s Store) Dir() string {
	return s.dir
}

func (s Store) CodesPath(category attendance.Category, action attendance.Action) string {
	return filepath.Join(s.dir, "codes", fmt.Sprintf("%s_%s", category, action))
}

func (s Store) CounterPath(category attendance.Category, billing attendance.Billing, action attendance.Action) string {
	return filepath.Join(s.dir, "json", fmt.Sprintf("%s_%s_%s.json", category, billing, action))
}

func (s Store) CSVPath(category attendance.Category, gender attendance.Gender) string {
	return filepath.Join(s.dir, "csv", fmt.Sprintf("%s_%s_%s.csv", category, gender, s.period))
}

func (s Store) WorkbookPath(category attendance.Category, gender attendance.Gender) string {
	return filepath.Join(s.dir, "xls", fmt.Sprintf("%s_%s_%s.xlsx", category, gender, s.period))
}

// WriteFile writes the file, creating its directory first.
func WriteFile(path string, contents []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0644)
}

func readFile(path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return contents, err
}

// LoadCodes reads the unique codes of a code file, any whitespace separates them.
func (s Store) LoadCodes(category attendance.Category, action attendance.Action) ([]attendance.EventID, error) {
	contents, err := readFile(s.CodesPath(category, action))
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(contents))
	scanner.Split(bufio.ScanWords)
	seen := map[string]struct{}{}
	var codes []attendance.EventID
	for scanner.Scan() {
		code := scanner.Text()
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, attendance.EventID(code))
	}
	return codes, scanner.Err()
}

// SaveCodes writes the codes sorted, one per line.
func (s Store) SaveCodes(category attendance.Category, action attendance.Action, codes []attendance.EventID) error {
	sorted := make([]string, 0, len(codes))
	for _, c := range codes {
		sorted = append(sorted, string(c))
	}
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var out strings.Builder
	for _, c := range sorted {
		out.WriteString(c)
		out.WriteString("\n")
	}
	return WriteFile(s.CodesPath(category, action), []byte(out.String()))
}

func (s Store) LoadCounter(category attendance.Category, billing attendance.Billing, action attendance.Action) (attendance.Counter, error) {
	path := s.CounterPath(category, billing, action)
	contents, err := readFile(path)
	if err != nil {
		return nil, err
	}
	counter := attendance.Counter{}
	err = json.Unmarshal(contents, &counter)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return counter, nil
}

// SaveCounter writes the counter as an indented JSON object. Names are
// written verbatim (no \u escapes) so the files stay readable and diffable.
func (s Store) SaveCounter(category attendance.Category, billing attendance.Billing, action attendance.Action, counter attendance.Counter) error {
	if counter == nil {
		counter = attendance.Counter{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	err := encoder.Encode(counter)
	if err != nil {
		return err
	}
	return WriteFile(s.CounterPath(category, billing, action), buf.Bytes())
}

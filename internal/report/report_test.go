package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"mariinsky-counter/internal/attendance"
	"mariinsky-counter/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	testCases := []struct {
		name     string
		roster   []string
		counters [4]attendance.Counter
		expected []Row
	}{
		{
			name:   "end to end",
			roster: []string{"X", "Y"},
			counters: [4]attendance.Counter{
				{"X": 2},
				{},
				{},
				{"Y": 1},
			},
			expected: []Row{
				{Name: "X", Counts: [4]int{2, 0, 0, 0}},
				{Name: "Y", Counts: [4]int{0, 0, 0, 1}},
			},
		},
		{
			name:   "lexicographic not by sum",
			roster: []string{"B", "A"},
			counters: [4]attendance.Counter{
				{"A": 5, "B": 3},
				{"B": 2},
				{},
				{},
			},
			expected: []Row{
				{Name: "A", Counts: [4]int{5, 0, 0, 0}},
				{Name: "B", Counts: [4]int{3, 2, 0, 0}},
			},
		},
		{
			name:   "zero rows dropped",
			roster: []string{"A", "B", "C"},
			counters: [4]attendance.Counter{
				{"A": 1, "B": 0},
				{},
				nil,
				{},
			},
			expected: []Row{
				{Name: "A", Counts: [4]int{1, 0, 0, 0}},
			},
		},
		{
			name:   "ties keep roster order",
			roster: []string{"C", "A", "B", "A"},
			counters: [4]attendance.Counter{
				{"A": 1, "B": 1, "C": 1},
				{},
				{"A": 4},
				{},
			},
			expected: []Row{
				{Name: "A", Counts: [4]int{1, 0, 4, 0}},
				{Name: "C", Counts: [4]int{1, 0, 0, 0}},
				{Name: "B", Counts: [4]int{1, 0, 0, 0}},
			},
		},
		{
			name:   "names outside roster ignored",
			roster: []string{"A"},
			counters: [4]attendance.Counter{
				{"Z": 10},
				{"A": 1},
				{},
				{},
			},
			expected: []Row{
				{Name: "A", Counts: [4]int{0, 1, 0, 0}},
			},
		},
		{
			name:     "empty roster",
			roster:   nil,
			counters: [4]attendance.Counter{{"A": 1}, {}, {}, {}},
			expected: []Row{},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expected, Aggregate(test.roster, test.counters))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	s := store.New(t.TempDir(), "period")
	for i, slot := range attendance.Slots {
		err := s.SaveCounter(attendance.Extras, slot.Billing, slot.Action, attendance.Counter{"X": i + 1})
		if err != nil {
			t.Fatal(err)
		}
	}

	counters, err := Load(s, attendance.Extras)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, [4]attendance.Counter{{"X": 1}, {"X": 2}, {"X": 3}, {"X": 4}}, counters)

	_, err = Load(s, attendance.Ballet)
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Row{
		{Name: "Иванова Анна", Counts: [4]int{2, 0, 1, 0}},
		{Name: "Smith, John", Counts: [4]int{0, 0, 0, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Иванова Анна,2,0,1,0\n\"Smith, John\",0,0,0,1\n", buf.String())
}

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("Иванова Анна,2,0,1,0\n\"Smith, John\",0,0,0,1\n"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []Row{
		{Name: "Иванова Анна", Counts: [4]int{2, 0, 1, 0}},
		{Name: "Smith, John", Counts: [4]int{0, 0, 0, 1}},
	}, rows)

	_, err = ReadCSV(strings.NewReader("X,1,2\n"))
	require.Error(t, err)
	_, err = ReadCSV(strings.NewReader("X,1,2,three,4\n"))
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, "ballet women", []Row{{Name: "X", Counts: [4]int{2, 0, 1, 0}}})

	out := buf.String()
	require.True(t, strings.Contains(out, "ballet women"))
	require.True(t, strings.Contains(out, "X"))
	require.True(t, strings.Contains(out, "Reh. secure"))
}

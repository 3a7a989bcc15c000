package report_test

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubuntu/appliance-insights/internal/common/testutils"
	"github.com/ubuntu/appliance-insights/internal/report"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// entry is an ordered view of one Appliances pair, for comparisons and golden files.
type entry struct {
	Name             string `yaml:"name"`
	report.Appliance `yaml:",inline"`
}

func entries(a *report.Appliances) []entry {
	got := make([]entry, 0, a.Len())
	for p := a.Oldest(); p != nil; p = p.Next() {
		got = append(got, entry{Name: p.Key, Appliance: p.Value})
	}
	return got
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string

		want []entry
	}{
		"Two sections with partial fields": {
			content: "--- Fridge ---\nOriginal cost: 120.5\nOptimized cost: 90.0\nSavings: 30.5\n--- Heater ---\nOriginal cost: 200\n",
			want: []entry{
				{Name: "Fridge", Appliance: report.Appliance{OriginalCost: 120.5, OptimizedCost: 90, Savings: 30.5}},
				{Name: "Heater", Appliance: report.Appliance{OriginalCost: 200}},
			},
		},
		"Fields in any order": {
			content: "--- A --- Savings: 5\nOriginal cost: 10\nOptimized cost: 8",
			want: []entry{
				{Name: "A", Appliance: report.Appliance{OriginalCost: 10, OptimizedCost: 8, Savings: 5}},
			},
		},
		"Section without fields has zero values": {
			content: "--- Lamp ---\nNothing could be optimized.\n",
			want:    []entry{{Name: "Lamp"}},
		},
		"Section with empty body": {
			content: "--- Lamp ---",
			want:    []entry{{Name: "Lamp"}},
		},
		"Consecutive headers": {
			content: "--- A ---\n--- B ---\nSavings: 1\n",
			want: []entry{
				{Name: "A"},
				{Name: "B", Appliance: report.Appliance{Savings: 1}},
			},
		},
		"Later duplicate replaces values without merging": {
			content: "--- A ---\nOriginal cost: 10\nSavings: 2\n--- B ---\nSavings: 1\n--- A ---\nOptimized cost: 3\n",
			want: []entry{
				{Name: "A", Appliance: report.Appliance{OptimizedCost: 3}},
				{Name: "B", Appliance: report.Appliance{Savings: 1}},
			},
		},
		"Names are trimmed but keep inner whitespace": {
			content: "---   Washing   Machine \t---\nSavings: 4\n",
			want: []entry{
				{Name: "Washing   Machine", Appliance: report.Appliance{Savings: 4}},
			},
		},
		"More than three dashes are accepted": {
			content: "-------- Pool Pump -----\nOriginal cost: 7\n",
			want: []entry{
				{Name: "Pool Pump", Appliance: report.Appliance{OriginalCost: 7}},
			},
		},
		"Header without spaces around the name": {
			content: "---Oven---Original cost:3",
			want: []entry{
				{Name: "Oven", Appliance: report.Appliance{OriginalCost: 3}},
			},
		},
		"Name can span lines up to the closing marker": {
			content: "--- A\nOriginal cost: 5\n--- B ---\nSavings: 1\n",
			want: []entry{
				{Name: "A\nOriginal cost: 5", Appliance: report.Appliance{Savings: 1}},
			},
		},
		"First occurrence of a label wins": {
			content: "--- A ---\nSavings: 1\nSavings: 2\n",
			want: []entry{
				{Name: "A", Appliance: report.Appliance{Savings: 1}},
			},
		},
		"Unrelated text around labels is ignored": {
			content: "--- A ---\nTotal Original cost: 10 EUR (estimated)\n",
			want: []entry{
				{Name: "A", Appliance: report.Appliance{OriginalCost: 10}},
			},
		},
		"Labels are case sensitive": {
			content: "--- A ---\noriginal cost: 10\nSAVINGS: 3\n",
			want:    []entry{{Name: "A"}},
		},
		"Signed and malformed numbers default to zero": {
			content: "--- A ---\nOriginal cost: -10\nOptimized cost: .5\nSavings: n/a\n",
			want:    []entry{{Name: "A"}},
		},
		"Numbers stop at the second decimal point": {
			content: "--- A ---\nOriginal cost: 1.2.3\nSavings: 7.\n",
			want: []entry{
				{Name: "A", Appliance: report.Appliance{OriginalCost: 1.2, Savings: 7}},
			},
		},
		"Text before the first header is ignored": {
			content: "Report for today\nSavings: 100\n--- A ---\nSavings: 1\n",
			want: []entry{
				{Name: "A", Appliance: report.Appliance{Savings: 1}},
			},
		},

		"No header yields an empty result": {
			content: "Original cost: 10\nSavings: 2\n",
			want:    []entry{},
		},
		"Two dashes are not a header": {
			content: "-- A --\nSavings: 2\n",
			want:    []entry{},
		},
		"Unterminated header is not a header": {
			content: "--- A\nSavings: 2\n",
			want:    []entry{},
		},
		"Empty content yields an empty result": {
			want: []entry{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := report.Parse(tc.content)
			require.NotNil(t, got, "Parse should never return nil")
			assert.Equal(t, tc.want, entries(got), "Unexpected parsed appliances")
		})
	}
}

func TestParseOverflowingValueLogsAndDefaults(t *testing.T) {
	t.Parallel()

	l := testutils.NewMockHandler(slog.LevelInfo)

	content := "--- A ---\nOriginal cost: 1" + strings.Repeat("0", 400) + "\nSavings: 2\n"
	got := report.Parse(content, report.WithLogger(slog.New(&l)))

	assert.Equal(t, []entry{{Name: "A", Appliance: report.Appliance{Savings: 2}}}, entries(got))
	if !l.AssertLevels(t, map[slog.Level]uint{slog.LevelWarn: 1}) {
		l.OutputLogs(t)
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string

		want      string
		wantOrder []string
	}{
		"Records keyed by name": {
			content:   "--- Fridge ---\nOriginal cost: 120.5\nOptimized cost: 90.0\nSavings: 30.5\n--- Heater ---\nOriginal cost: 200\n",
			want:      `{"Fridge":{"original_cost":120.5,"optimized_cost":90,"savings":30.5},"Heater":{"original_cost":200,"optimized_cost":0,"savings":0}}`,
			wantOrder: []string{"Fridge", "Heater"},
		},
		"Source order is kept": {
			content:   "--- Zeta ---\n--- Alpha ---\n",
			want:      `{"Zeta":{"original_cost":0,"optimized_cost":0,"savings":0},"Alpha":{"original_cost":0,"optimized_cost":0,"savings":0}}`,
			wantOrder: []string{"Zeta", "Alpha"},
		},
		"Empty result is an empty object": {
			want: `{}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			data, err := json.Marshal(report.Parse(tc.content))
			require.NoError(t, err, "Marshalling parsed appliances should not fail")
			assert.JSONEq(t, tc.want, string(data), "Unexpected JSON document")

			last := -1
			for _, key := range tc.wantOrder {
				i := strings.Index(string(data), `"`+key+`"`)
				require.Greater(t, i, last, "Key %q is out of order in %s", key, data)
				last = i
			}
		})
	}
}

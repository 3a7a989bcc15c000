// Package report reads the text reports produced by the appliance scheduler and
// extracts the per appliance costs and savings from the explanation report.
package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ubuntu/decorate"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrReportNotFound is returned when a report file does not exist.
var ErrReportNotFound = errors.New("report not found")

// Appliance holds the costs and savings of a single appliance.
type Appliance struct {
	OriginalCost  float64 `json:"original_cost" yaml:"original_cost"`
	OptimizedCost float64 `json:"optimized_cost" yaml:"optimized_cost"`
	Savings       float64 `json:"savings" yaml:"savings"`
}

// Appliances maps appliance names to their record, in the order they first appear in the report.
type Appliances = orderedmap.OrderedMap[string, Appliance]

type options struct {
	log *slog.Logger
}

// Options represents an optional function to override report default values.
type Options func(*options)

// WithLogger sets the logger used to report recoverable irregularities.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(args []Options) options {
	opts := options{log: slog.Default()}
	for _, opt := range args {
		opt(&opts)
	}
	return opts
}

// ReadExplanation reads and parses the explanation report at path.
//
// If the file does not exist, an empty Appliances is returned along with an error wrapping ErrReportNotFound.
func ReadExplanation(path string, args ...Options) (*Appliances, error) {
	content, err := readReport(path)
	if err != nil {
		return orderedmap.New[string, Appliance](), err
	}

	return Parse(content, args...), nil
}

// ReadSchedules returns the raw content of the schedules report at path.
func ReadSchedules(path string) (string, error) {
	return readReport(path)
}

// readReport returns the content of a report as UTF-8 text.
// A leading byte order mark is removed, and UTF-16 reports with a byte order mark are transcoded.
// Other reports must be valid UTF-8, or encoding.ErrInvalidUTF8 is returned.
func readReport(path string) (content string, err error) {
	defer decorate.OnError(&err, "could not read report %q", path)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %v", ErrReportNotFound, err)
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	// A UTF-8 byte order mark switches BOMOverride to a no-op, hence the second validation.
	decoder := transform.Chain(unicode.BOMOverride(encoding.UTF8Validator), encoding.UTF8Validator)
	data, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return "", err
	}

	return string(data), nil
}

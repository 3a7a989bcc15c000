package report

import (
	"regexp"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Sections start with a header in the form `--- NAME ---`.
// Both markers accept three or more dashes, and the name is the shortest text between them, newlines included.
var sectionHeaderRegex = regexp.MustCompile(`(?s)-{3,}\s*(.+?)\s*-{3,}`)

// Fields are in the form `label: number`, where number is an unsigned decimal like "200" or "30.5".
var (
	originalCostRegex  = regexp.MustCompile(`Original cost:\s*(\d+(?:\.\d*)?)`)
	optimizedCostRegex = regexp.MustCompile(`Optimized cost:\s*(\d+(?:\.\d*)?)`)
	savingsRegex       = regexp.MustCompile(`Savings:\s*(\d+(?:\.\d*)?)`)
)

// Parse extracts the appliance records of an explanation report.
//
// Each section yields one record keyed by its trimmed name. A later section with the same name replaces
// the values of the earlier one. Fields missing from a section are 0.
// Parse never fails: content without any section header results in an empty Appliances.
func Parse(content string, args ...Options) *Appliances {
	opts := newOptions(args)
	appliances := orderedmap.New[string, Appliance]()

	headers := sectionHeaderRegex.FindAllStringSubmatchIndex(content, -1)
	for i, h := range headers {
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}

		name := strings.TrimSpace(content[h[2]:h[3]])
		body := content[h[1]:end]

		appliances.Set(name, Appliance{
			OriginalCost:  opts.field(originalCostRegex, name, body),
			OptimizedCost: opts.field(optimizedCostRegex, name, body),
			Savings:       opts.field(savingsRegex, name, body),
		})
	}

	return appliances
}

// field returns the first value matched by re in the section body, or 0 if there is none.
func (o options) field(re *regexp.Regexp, section, body string) float64 {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return 0
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		// Only happens when the value overflows a float64.
		o.log.Warn("Ignoring unparsable report value", "section", section, "value", m[1], "err", err)
		return 0
	}
	return v
}

package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spboyer/fairscore/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one diff table.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one model family.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure marks a family whose diff exceeded the limit.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError marks a family whose diff is undefined.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ExceedsLimit reports whether a defined diff is above limit.
func ExceedsLimit(d models.FamilyDiff, limit float64) bool {
	v, ok := d.Value.Get()
	return ok && v > limit
}

// ConvertToJUnit turns diff tables into one suite per table and one test
// case per family. A family fails when its diff exceeds limit and errors
// when its diff is undefined.
func ConvertToJUnit(tables []models.DiffTable, limit float64, ts time.Time) *JUnitTestSuites {
	out := &JUnitTestSuites{}
	for _, t := range tables {
		suite := JUnitTestSuite{
			Name:      t.Name,
			Timestamp: ts.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "fail_above", Value: strconv.FormatFloat(limit, 'f', -1, 64)},
			},
		}
		for _, d := range t.Diffs {
			tc := JUnitTestCase{Name: d.Family, Classname: t.Name}
			switch {
			case !d.Value.Valid:
				tc.Error = &JUnitError{
					Message: fmt.Sprintf("%s: %s is undefined", d.Family, t.Name),
					Type:    "UndefinedMetric",
				}
				suite.Errors++
			case ExceedsLimit(d, limit):
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s: %s=%s", d.Family, t.Name, d.Value),
					Type:    "BiasThresholdExceeded",
					Body:    fmt.Sprintf("%s exceeds limit %g", d.Value, limit),
				}
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
			suite.Tests++
		}
		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(tables []models.DiffTable, limit float64, path string) error {
	suites := ConvertToJUnit(tables, limit, time.Now().UTC())

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}

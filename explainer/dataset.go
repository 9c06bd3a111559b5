package explainer

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	labelPrefix  = "__label__"
	maxLineBytes = 1 << 20
)

// ErrUnknownLabel is returned when a value is outside the observed label set.
var ErrUnknownLabel = errors.New("label not in category set")

// Categories is the sorted, unique set of labels observed in a dataset.
type Categories struct {
	values []int
	index  map[int]int
}

// NewCategories builds the category set of the given labels.
func NewCategories(labels []int) Categories {
	seen := make(map[int]struct{}, len(labels))
	values := make([]int, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		values = append(values, l)
	}
	sort.Ints(values)
	index := make(map[int]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	return Categories{values: values, index: index}
}

// Values returns the labels in ascending order.
func (c Categories) Values() []int {
	return append([]int(nil), c.values...)
}

// Len reports the number of categories.
func (c Categories) Len() int {
	return len(c.values)
}

// Cast checks that v belongs to the set.
func (c Categories) Cast(v int) (int, error) {
	if _, ok := c.index[v]; !ok {
		return 0, errors.Wrapf(ErrUnknownLabel, "label %d", v)
	}
	return v, nil
}

// Index returns the position of v in Values.
func (c Categories) Index(v int) (int, error) {
	i, ok := c.index[v]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownLabel, "label %d", v)
	}
	return i, nil
}

// Names renders the labels as strings, in Values order.
func (c Categories) Names() []string {
	out := make([]string, len(c.values))
	for i, v := range c.values {
		out[i] = strconv.Itoa(v)
	}
	return out
}

// Record is one labelled sentence.
type Record struct {
	Truth int
	Text  string
}

// Dataset is a training table loaded from a TSV file.
type Dataset struct {
	Path       string
	Records    []Record
	Categories Categories
}

// Texts returns the text column.
func (d *Dataset) Texts() []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Text
	}
	return out
}

// Labels returns the truth column.
func (d *Dataset) Labels() []int {
	out := make([]int, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Truth
	}
	return out
}

// Len reports the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// LoadDataset reads a headerless two-column TSV of `__label__N<TAB>text` rows.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()
	ds, err := ReadDataset(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	ds.Path = path
	return ds, nil
}

// ReadDataset parses TSV rows from r. Each line is one record; the text
// column is taken verbatim, quotes included. Blank lines are skipped.
func ReadDataset(r io.Reader) (*Dataset, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	ds := &Dataset{}
	line := 0
	for scanner.Scan() {
		line++
		row := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(row) == "" {
			continue
		}
		field, text, ok := strings.Cut(row, "\t")
		if !ok || strings.Contains(text, "\t") {
			return nil, errors.Errorf("line %d: wrong number of fields, want 2", line)
		}
		label, err := parseLabel(field)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		ds.Records = append(ds.Records, Record{Truth: label, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan tsv after line %d", line)
	}
	if len(ds.Records) == 0 {
		return nil, errors.New("dataset is empty")
	}
	ds.Categories = NewCategories(ds.Labels())
	return ds, nil
}

func parseLabel(field string) (int, error) {
	raw := strings.TrimSpace(strings.Replace(field, labelPrefix, "", 1))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("label %q is not an integer", field)
	}
	return v, nil
}

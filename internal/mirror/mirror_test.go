package mirror

import (
	"context"
	"fmt"
	"sync"
)

// fakeAPI is an in-memory sheet bridge. Row 1 of every sheet is the header.
type fakeAPI struct {
	mu          sync.Mutex
	sheets      map[string][][]string
	validations map[string][]ValidationRule
	writeFails  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		sheets:      map[string][][]string{},
		validations: map[string][]ValidationRule{},
	}
}

func (f *fakeAPI) failNextWrites(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeFails = n
}

func (f *fakeAPI) maybeFail() error {
	if f.writeFails > 0 {
		f.writeFails--
		return fmt.Errorf("bridge unavailable")
	}
	return nil
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func (f *fakeAPI) EnsureSheet(_ context.Context, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sheets[title]; !ok {
		f.sheets[title] = [][]string{}
	}
	return nil
}

func (f *fakeAPI) SetHeader(_ context.Context, title string, headers []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sheet := f.sheets[title]
	if len(sheet) == 0 {
		f.sheets[title] = [][]string{headers}
		return nil
	}
	sheet[0] = headers
	return nil
}

func (f *fakeAPI) SetValidation(_ context.Context, title string, rules []ValidationRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations[title] = rules
	return nil
}

func (f *fakeAPI) FormatColumns(_ context.Context, _ string, _ []int, _ string) error {
	return nil
}

func (f *fakeAPI) GetRows(_ context.Context, title string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sheet := f.sheets[title]
	out := make([][]string, len(sheet))
	for i, row := range sheet {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (f *fakeAPI) UpdateRow(_ context.Context, title string, rowIndex int, values []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail(); err != nil {
		return err
	}
	sheet := f.sheets[title]
	if rowIndex < 1 || rowIndex > len(sheet) {
		return fmt.Errorf("row %d out of range", rowIndex)
	}
	sheet[rowIndex-1] = toStrings(values)
	return nil
}

func (f *fakeAPI) AppendRow(_ context.Context, title string, values []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail(); err != nil {
		return err
	}
	f.sheets[title] = append(f.sheets[title], toStrings(values))
	return nil
}

func (f *fakeAPI) DeleteRow(_ context.Context, title string, rowIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.maybeFail(); err != nil {
		return err
	}
	sheet := f.sheets[title]
	if rowIndex < 1 || rowIndex > len(sheet) {
		return fmt.Errorf("row %d out of range", rowIndex)
	}
	f.sheets[title] = append(sheet[:rowIndex-1], sheet[rowIndex:]...)
	return nil
}

package qr

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/atelier-ops/workshop-api/pkg/errors"
)

func TestExtractBatchID(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    int64
		wantErr bool
	}{
		{name: "bare integer", payload: "42", want: 42},
		{name: "bare integer with whitespace", payload: "  42\n", want: 42},
		{name: "labelled payload", payload: "ID:  42\nProject: Autumn line\nColor: black", want: 42},
		{name: "label without extra spaces", payload: "ID:42", want: 42},
		{name: "id line not first", payload: "Scanned at gate\nID: 7", want: 7},
		{name: "empty", payload: "   ", wantErr: true},
		{name: "no id anywhere", payload: "Project: Autumn line", wantErr: true},
		{name: "garbled id line", payload: "ID: forty-two", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractBatchID(tc.payload)
			if tc.wantErr {
				require.Error(t, err)
				require.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
